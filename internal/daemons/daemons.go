// Package daemons manages the external processes behind the web steering
// stack: find them by command-line pattern, stop stale instances, launch
// fresh ones in a fixed order.
package daemons

import (
	"path/filepath"
	"time"
)

const (
	// DefaultProjectRoot is where the device checkout lives.
	DefaultProjectRoot = "/data/openpilot"

	// DefaultReadyDelay trails the first daemon launch. The encoder owns the
	// camera pipeline and the downstream daemons expect it to be up.
	DefaultReadyDelay = 3 * time.Second
)

// Spec describes one managed daemon: how to find running instances and how
// to launch a fresh one.
type Spec struct {
	// ID is the short stable name used in logs and results.
	ID string
	// Name is the human-readable description.
	Name string
	// Command is the executable path or name resolved via PATH.
	Command string
	// Args are the fixed launch arguments.
	Args []string
	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env []string
	// Match is the substring that identifies the daemon in a process
	// command line.
	Match string
	// StartDelay pauses the launch sequence after this daemon starts.
	StartDelay time.Duration
}

// DefaultSpecs returns the three daemons of the steering stack, in launch
// order, rooted at the given checkout.
func DefaultSpecs(projectRoot string) []Spec {
	if projectRoot == "" {
		projectRoot = DefaultProjectRoot
	}
	return []Spec{
		{
			ID:         "encoderd",
			Name:       "camera encoder",
			Command:    filepath.Join(projectRoot, "system", "loggerd", "encoderd"),
			Args:       []string{"--stream"},
			Match:      "encoderd",
			StartDelay: DefaultReadyDelay,
		},
		{
			ID:      "webrtcd",
			Name:    "webrtc stream daemon",
			Command: filepath.Join(projectRoot, "system", "webrtc", "webrtcd.py"),
			Match:   "webrtcd",
		},
		{
			ID:      "web_steer",
			Name:    "steering control page",
			Command: "python3",
			Args:    []string{filepath.Join(projectRoot, "tools", "joystick", "web_steer.py")},
			Env:     []string{"PYTHONPATH=" + projectRoot},
			Match:   "web_steer",
		},
	}
}
