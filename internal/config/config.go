package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/steerctl/internal/daemons"
	"github.com/danmuck/steerctl/internal/params"
)

// LauncherConfig drives the steerctl launch sequence. The zero value is not
// usable; start from DefaultLauncherConfig.
type LauncherConfig struct {
	ParamsRoot  string
	ProjectRoot string
	LogDir      string
	ReadyDelay  time.Duration
	WebPort     int
	Daemons     []DaemonEntry
}

// DaemonEntry overrides one managed daemon. A non-empty Daemons list in a
// launcher config replaces the default stack wholesale.
type DaemonEntry struct {
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	Env        []string `toml:"env"`
	Match      string   `toml:"match"`
	StartDelay string   `toml:"start_delay"`
}

// TunnelConfig drives tunnelctl: where to dial, how to authenticate, and
// which ports to bridge.
type TunnelConfig struct {
	Host            string
	Port            int
	User            string
	KeyPath         string
	KeyPassphrase   string
	KnownHostsPath  string
	InsecureHostKey bool
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	LocalAddr       string
	RemoteAddr      string
}

// WebConfig drives webctl, the steering-page server.
type WebConfig struct {
	Addr         string
	WebrtcdAddr  string
	CorsOrigins  []string
	ProxyTimeout time.Duration
}

// RenderConfig drives renderctl, the replay overlay pipeline.
type RenderConfig struct {
	InputDir     string
	OutputDir    string
	TemplatePath string
	RendererCmd  []string
	Workers      int
	FPS          float64
}

func DefaultLauncherConfig() LauncherConfig {
	return LauncherConfig{
		ParamsRoot:  params.DefaultRoot,
		ProjectRoot: daemons.DefaultProjectRoot,
		ReadyDelay:  daemons.DefaultReadyDelay,
		WebPort:     3000,
	}
}

func DefaultTunnelConfig() TunnelConfig {
	return TunnelConfig{
		Port:        22,
		User:        "comma",
		KeyPath:     "~/.ssh/id_rsa",
		DialTimeout: 10 * time.Second,
		KeepAlive:   30 * time.Second,
		LocalAddr:   "127.0.0.1:3000",
		RemoteAddr:  "localhost:3000",
	}
}

func DefaultWebConfig() WebConfig {
	return WebConfig{
		Addr:         "0.0.0.0:3000",
		WebrtcdAddr:  "localhost:5001",
		CorsOrigins:  []string{"*"},
		ProxyTimeout: 10 * time.Second,
	}
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		OutputDir:    "",
		TemplatePath: "overlay_template.html",
		Workers:      4,
		FPS:          20,
	}
}

func ValidateLauncherConfig(cfg LauncherConfig) error {
	if strings.TrimSpace(cfg.ParamsRoot) == "" {
		return fmt.Errorf("launcher config missing params_root")
	}
	if strings.TrimSpace(cfg.ProjectRoot) == "" {
		return fmt.Errorf("launcher config missing project_root")
	}
	if cfg.ReadyDelay < 0 {
		return fmt.Errorf("launcher config negative ready_delay")
	}
	for i, entry := range cfg.Daemons {
		if err := ValidateDaemonEntry(entry); err != nil {
			return fmt.Errorf("daemon[%d] invalid: %w", i, err)
		}
	}
	return nil
}

func ValidateDaemonEntry(entry DaemonEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(entry.Command) == "" {
		return fmt.Errorf("command is required")
	}
	if strings.TrimSpace(entry.Match) == "" {
		return fmt.Errorf("match is required")
	}
	if entry.StartDelay != "" {
		if _, err := time.ParseDuration(entry.StartDelay); err != nil {
			return fmt.Errorf("bad start_delay: %w", err)
		}
	}
	return nil
}

func ValidateTunnelConfig(cfg TunnelConfig) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("tunnel config missing host")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("tunnel config bad port: %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.User) == "" {
		return fmt.Errorf("tunnel config missing user")
	}
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return fmt.Errorf("tunnel config missing key_path")
	}
	if strings.TrimSpace(cfg.LocalAddr) == "" || strings.TrimSpace(cfg.RemoteAddr) == "" {
		return fmt.Errorf("tunnel config missing forward addresses")
	}
	return nil
}

func ValidateWebConfig(cfg WebConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("web config missing addr")
	}
	if strings.TrimSpace(cfg.WebrtcdAddr) == "" {
		return fmt.Errorf("web config missing webrtcd_addr")
	}
	if cfg.ProxyTimeout <= 0 {
		return fmt.Errorf("web config bad proxy_timeout")
	}
	return nil
}

func ValidateRenderConfig(cfg RenderConfig) error {
	if strings.TrimSpace(cfg.InputDir) == "" {
		return fmt.Errorf("render config missing input_dir")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("render config bad workers: %d", cfg.Workers)
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("render config bad fps: %v", cfg.FPS)
	}
	return nil
}

type webFile struct {
	Addr         string   `toml:"addr"`
	WebrtcdAddr  string   `toml:"webrtcd_addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	ProxyTimeout string   `toml:"proxy_timeout"`
}

type renderFile struct {
	InputDir     string   `toml:"input_dir"`
	OutputDir    string   `toml:"output_dir"`
	TemplatePath string   `toml:"template"`
	RendererCmd  []string `toml:"renderer_cmd"`
	Workers      int      `toml:"workers"`
	FPS          float64  `toml:"fps"`
}

// LoadWebConfig reads a whole-file web config on top of the defaults.
func LoadWebConfig(path string) (WebConfig, error) {
	cfg := DefaultWebConfig()
	var raw webFile
	if err := loadToml(path, &raw); err != nil {
		return WebConfig{}, err
	}
	if strings.TrimSpace(raw.Addr) != "" {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if strings.TrimSpace(raw.WebrtcdAddr) != "" {
		cfg.WebrtcdAddr = strings.TrimSpace(raw.WebrtcdAddr)
	}
	if raw.CorsOrigins != nil {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if strings.TrimSpace(raw.ProxyTimeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ProxyTimeout))
		if err != nil {
			return WebConfig{}, fmt.Errorf("config parse proxy_timeout (%s): %w", path, err)
		}
		cfg.ProxyTimeout = d
	}
	if err := ValidateWebConfig(cfg); err != nil {
		return WebConfig{}, err
	}
	return cfg, nil
}

// LoadRenderConfig reads a whole-file render config on top of the defaults.
// Command-line values land after this, so the caller validates the final
// config itself.
func LoadRenderConfig(path string) (RenderConfig, error) {
	cfg := DefaultRenderConfig()
	var raw renderFile
	if err := loadToml(path, &raw); err != nil {
		return RenderConfig{}, err
	}
	if strings.TrimSpace(raw.InputDir) != "" {
		cfg.InputDir = strings.TrimSpace(raw.InputDir)
	}
	if strings.TrimSpace(raw.OutputDir) != "" {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}
	if strings.TrimSpace(raw.TemplatePath) != "" {
		cfg.TemplatePath = strings.TrimSpace(raw.TemplatePath)
	}
	if raw.RendererCmd != nil {
		cfg.RendererCmd = raw.RendererCmd
	}
	if raw.Workers != 0 {
		cfg.Workers = raw.Workers
	}
	if raw.FPS != 0 {
		cfg.FPS = raw.FPS
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
