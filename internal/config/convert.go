package config

import (
	"time"

	"github.com/danmuck/steerctl/internal/daemons"
)

// DaemonSpecs resolves a launcher config into the ordered daemon stack.
// Without overrides this is the default three-daemon stack rooted at the
// configured checkout; with overrides the entries replace the stack
// wholesale. Entries must have passed ValidateLauncherConfig.
func DaemonSpecs(cfg LauncherConfig) []daemons.Spec {
	if len(cfg.Daemons) == 0 {
		specs := daemons.DefaultSpecs(cfg.ProjectRoot)
		if len(specs) > 0 {
			specs[0].StartDelay = cfg.ReadyDelay
		}
		return specs
	}

	specs := make([]daemons.Spec, 0, len(cfg.Daemons))
	for _, entry := range cfg.Daemons {
		spec := daemons.Spec{
			ID:      entry.ID,
			Name:    entry.Name,
			Command: entry.Command,
			Args:    append([]string{}, entry.Args...),
			Env:     append([]string{}, entry.Env...),
			Match:   entry.Match,
		}
		if entry.StartDelay != "" {
			if d, err := time.ParseDuration(entry.StartDelay); err == nil {
				spec.StartDelay = d
			}
		}
		specs = append(specs, spec)
	}
	return specs
}
