package daemons

import (
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Process is a controllable handle on one running OS process.
type Process interface {
	PID() int32
	// Terminate asks the process to stop (SIGTERM).
	Terminate() error
	// Kill stops the process forcefully (SIGKILL).
	Kill() error
	Running() (bool, error)
}

// Finder locates running processes whose command line contains a pattern.
type Finder interface {
	Find(pattern string) ([]Process, error)
}

// TableFinder scans the system process table. The calling process is never
// reported, so a manager binary whose own arguments mention a daemon does
// not stop itself.
type TableFinder struct{}

func (TableFinder) Find(pattern string) ([]Process, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("daemons: empty match pattern")
	}
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("daemons: read process table: %w", err)
	}
	self := int32(os.Getpid())
	matches := make([]Process, 0)
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		cmdline, err := p.Cmdline()
		if err != nil || cmdline == "" {
			continue
		}
		if strings.Contains(cmdline, pattern) {
			matches = append(matches, tableProcess{p})
		}
	}
	return matches, nil
}

type tableProcess struct {
	p *process.Process
}

func (tp tableProcess) PID() int32 {
	return tp.p.Pid
}

func (tp tableProcess) Terminate() error {
	return tp.p.Terminate()
}

func (tp tableProcess) Kill() error {
	return tp.p.Kill()
}

func (tp tableProcess) Running() (bool, error) {
	return tp.p.IsRunning()
}
