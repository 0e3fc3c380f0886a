package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Launcher and tunnel configs are partial by design: operators usually set
// one or two keys and lean on the defaults for the rest. Loading goes
// through toml.MetaData so only keys present in the file override the
// defaults, and durations are written as strings.

type launcherFile struct {
	ParamsRoot  string        `toml:"params_root"`
	ProjectRoot string        `toml:"project_root"`
	LogDir      string        `toml:"log_dir"`
	ReadyDelay  string        `toml:"ready_delay"`
	WebPort     int           `toml:"web_port"`
	Daemons     []DaemonEntry `toml:"daemons"`
}

// LoadLauncherConfig reads a launcher config on top of the defaults and
// validates the result.
func LoadLauncherConfig(path string) (LauncherConfig, error) {
	cfg := DefaultLauncherConfig()

	var raw launcherFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return LauncherConfig{}, fmt.Errorf("load launcher config: %w", err)
	}

	if meta.IsDefined("params_root") {
		cfg.ParamsRoot = strings.TrimSpace(raw.ParamsRoot)
	}
	if meta.IsDefined("project_root") {
		cfg.ProjectRoot = strings.TrimSpace(raw.ProjectRoot)
	}
	if meta.IsDefined("log_dir") {
		cfg.LogDir = strings.TrimSpace(raw.LogDir)
	}
	if meta.IsDefined("ready_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadyDelay))
		if err != nil {
			return LauncherConfig{}, fmt.Errorf("parse ready_delay: %w", err)
		}
		cfg.ReadyDelay = d
	}
	if meta.IsDefined("web_port") {
		cfg.WebPort = raw.WebPort
	}
	if meta.IsDefined("daemons") {
		cfg.Daemons = raw.Daemons
	}

	if err := ValidateLauncherConfig(cfg); err != nil {
		return LauncherConfig{}, err
	}
	return cfg, nil
}

type tunnelFile struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	KeyPath         string `toml:"key_path"`
	KeyPassphrase   string `toml:"key_passphrase"`
	KnownHostsPath  string `toml:"known_hosts_path"`
	InsecureHostKey bool   `toml:"insecure_host_key"`
	DialTimeout     string `toml:"dial_timeout"`
	KeepAlive       string `toml:"keepalive"`
	LocalAddr       string `toml:"local_addr"`
	RemoteAddr      string `toml:"remote_addr"`
}

// LoadTunnelConfig reads a tunnel config on top of the defaults. The host
// usually arrives on the command line, so the caller validates the final
// config after applying its own overrides.
func LoadTunnelConfig(path string) (TunnelConfig, error) {
	cfg := DefaultTunnelConfig()

	var raw tunnelFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return TunnelConfig{}, fmt.Errorf("load tunnel config: %w", err)
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("user") {
		cfg.User = strings.TrimSpace(raw.User)
	}
	if meta.IsDefined("key_path") {
		cfg.KeyPath = strings.TrimSpace(raw.KeyPath)
	}
	if meta.IsDefined("key_passphrase") {
		cfg.KeyPassphrase = raw.KeyPassphrase
	}
	if meta.IsDefined("known_hosts_path") {
		cfg.KnownHostsPath = strings.TrimSpace(raw.KnownHostsPath)
	}
	if meta.IsDefined("insecure_host_key") {
		cfg.InsecureHostKey = raw.InsecureHostKey
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return TunnelConfig{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}
	if meta.IsDefined("keepalive") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.KeepAlive))
		if err != nil {
			return TunnelConfig{}, fmt.Errorf("parse keepalive: %w", err)
		}
		cfg.KeepAlive = d
	}
	if meta.IsDefined("local_addr") {
		cfg.LocalAddr = strings.TrimSpace(raw.LocalAddr)
	}
	if meta.IsDefined("remote_addr") {
		cfg.RemoteAddr = strings.TrimSpace(raw.RemoteAddr)
	}

	return cfg, nil
}
