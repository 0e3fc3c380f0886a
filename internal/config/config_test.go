package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/steerctl/internal/testutil/testlog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadWebConfigOverlaysDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "web.toml", `
addr = ":8080"
proxy_timeout = "2s"
`)

	cfg, err := LoadWebConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr not overridden: %+v", cfg)
	}
	if cfg.WebrtcdAddr != "localhost:5001" {
		t.Fatalf("webrtcd default lost: %+v", cfg)
	}
	if cfg.ProxyTimeout != 2*time.Second {
		t.Fatalf("proxy timeout not parsed: %+v", cfg)
	}
}

func TestLoadWebConfigRejectsBadDuration(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "web.toml", `proxy_timeout = "fast"`)

	if _, err := LoadWebConfig(path); err == nil {
		t.Fatalf("bad duration should fail")
	}
}

func TestLoadRenderConfigKeepsDefaultsForMissingFields(t *testing.T) {
	testlog.Start(t)
	path := writeFile(t, "render.toml", `
workers = 8
renderer_cmd = ["overlay-render", "--headless"]
`)

	cfg, err := LoadRenderConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Workers != 8 {
		t.Fatalf("workers not overridden: %+v", cfg)
	}
	if cfg.FPS != 20 {
		t.Fatalf("fps default lost: %+v", cfg)
	}
	if len(cfg.RendererCmd) != 2 || cfg.RendererCmd[0] != "overlay-render" {
		t.Fatalf("renderer_cmd not parsed: %+v", cfg)
	}
}

func TestDaemonSpecsDefaultsKeepLaunchOrder(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultLauncherConfig()
	cfg.ReadyDelay = 50 * time.Millisecond

	specs := DaemonSpecs(cfg)
	if len(specs) != 3 {
		t.Fatalf("expected default stack, got %d specs", len(specs))
	}
	if specs[0].ID != "encoderd" || specs[1].ID != "webrtcd" || specs[2].ID != "web_steer" {
		t.Fatalf("unexpected order: %v %v %v", specs[0].ID, specs[1].ID, specs[2].ID)
	}
	if specs[0].StartDelay != 50*time.Millisecond {
		t.Fatalf("ready delay not applied to first daemon: %+v", specs[0])
	}
}

func TestDaemonSpecsOverridesReplaceStack(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultLauncherConfig()
	cfg.Daemons = []DaemonEntry{
		{ID: "web", Command: "/usr/local/bin/webctl", Match: "webctl", StartDelay: "1s"},
	}

	specs := DaemonSpecs(cfg)
	if len(specs) != 1 {
		t.Fatalf("override should replace stack: %+v", specs)
	}
	if specs[0].Command != "/usr/local/bin/webctl" || specs[0].StartDelay != time.Second {
		t.Fatalf("override not applied: %+v", specs[0])
	}
}

func TestValidateTunnelConfig(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultTunnelConfig()
	if err := ValidateTunnelConfig(cfg); err == nil {
		t.Fatalf("missing host should fail validation")
	}
	cfg.Host = "device.local"
	if err := ValidateTunnelConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cfg.Port = 70000
	if err := ValidateTunnelConfig(cfg); err == nil {
		t.Fatalf("out-of-range port should fail validation")
	}
}

func TestTemplatesParseBackThroughLoaders(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"launcher", "tunnel", "web", "render"} {
		if _, err := Template(kind); err != nil {
			t.Fatalf("template %s missing: %v", kind, err)
		}
	}
	if _, err := Template("bogus"); err == nil {
		t.Fatalf("unknown kind should fail")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "web.toml")
	if err := WriteTemplate(path, "web", false); err != nil {
		t.Fatalf("write template failed: %v", err)
	}
	if err := WriteTemplate(path, "web", false); err == nil {
		t.Fatalf("second write without overwrite should fail")
	}
	if _, err := LoadWebConfig(path); err != nil {
		t.Fatalf("web template should load cleanly: %v", err)
	}
}
