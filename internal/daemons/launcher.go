package daemons

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Launcher starts one daemon and reports its PID.
type Launcher interface {
	Launch(spec Spec) (int32, error)
}

// ExecLauncher starts daemons detached from the calling process: own
// session, inherited environment plus the spec's entries, output to a
// per-daemon log file when LogDir is set, discarded otherwise. The daemon
// keeps running after the launcher exits.
type ExecLauncher struct {
	LogDir string
}

func (l ExecLauncher) Launch(spec Spec) (int32, error) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if l.LogDir != "" {
		if err := os.MkdirAll(l.LogDir, 0o755); err != nil {
			return 0, fmt.Errorf("daemons: prepare log dir: %w", err)
		}
		logPath := filepath.Join(l.LogDir, spec.ID+".log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, fmt.Errorf("daemons: open log %s: %w", logPath, err)
		}
		defer logFile.Close()
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("daemons: launch %s: %w", spec.ID, err)
	}
	pid := int32(cmd.Process.Pid)
	// The daemon outlives us. Release the handle instead of waiting on it.
	_ = cmd.Process.Release()
	return pid, nil
}
