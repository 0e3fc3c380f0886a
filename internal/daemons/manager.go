package daemons

import (
	"time"

	"github.com/danmuck/steerctl/internal/logging"
)

// ManagerConfig wires a Manager's specs and process boundaries.
type ManagerConfig struct {
	Specs    []Spec
	Finder   Finder
	Launcher Launcher
	// StopWait bounds how long StopAll waits for a terminated process to
	// exit before escalating to Kill.
	StopWait time.Duration
	// PollInterval is the exit-check cadence during StopWait.
	PollInterval time.Duration
}

// WithDefaults fills the zero fields with runtime defaults.
func (c ManagerConfig) WithDefaults() ManagerConfig {
	if c.Finder == nil {
		c.Finder = TableFinder{}
	}
	if c.Launcher == nil {
		c.Launcher = ExecLauncher{}
	}
	if c.StopWait <= 0 {
		c.StopWait = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	return c
}

// Manager sequences stop and launch across the managed daemons.
type Manager struct {
	cfg ManagerConfig
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{cfg: cfg.WithDefaults()}
}

// StopResult reports the stop outcome for one spec. Err is set only when
// the process table itself could not be consulted; absent daemons count as
// stopped.
type StopResult struct {
	Spec    Spec
	Stopped []int32
	Killed  []int32
	Err     error
}

// StartResult reports the launch outcome for one spec.
type StartResult struct {
	Spec Spec
	PID  int32
	Err  error
}

// Status reports whether a spec currently has running instances.
type Status struct {
	Spec    Spec
	Running bool
	PIDs    []int32
}

// StopAll terminates every running instance of every spec: SIGTERM first,
// a bounded wait for exit, SIGKILL for whatever remains. Daemons that are
// not running are success, not failure.
func (m *Manager) StopAll() []StopResult {
	results := make([]StopResult, 0, len(m.cfg.Specs))
	for _, spec := range m.cfg.Specs {
		results = append(results, m.stopOne(spec))
	}
	return results
}

func (m *Manager) stopOne(spec Spec) StopResult {
	res := StopResult{Spec: spec}
	procs, err := m.cfg.Finder.Find(spec.Match)
	if err != nil {
		res.Err = err
		logging.Warnf("daemons.Manager.stopOne find failed daemon=%s err=%v", spec.ID, err)
		return res
	}
	if len(procs) == 0 {
		logging.Debugf("daemons.Manager.stopOne nothing running daemon=%s", spec.ID)
		return res
	}

	for _, p := range procs {
		if err := p.Terminate(); err != nil {
			logging.Warnf("daemons.Manager.stopOne terminate failed daemon=%s pid=%d err=%v", spec.ID, p.PID(), err)
		}
	}

	pending := procs
	deadline := time.Now().Add(m.cfg.StopWait)
	for len(pending) > 0 && time.Now().Before(deadline) {
		still := make([]Process, 0, len(pending))
		for _, p := range pending {
			running, err := p.Running()
			if err != nil || !running {
				res.Stopped = append(res.Stopped, p.PID())
				continue
			}
			still = append(still, p)
		}
		pending = still
		if len(pending) > 0 {
			time.Sleep(m.cfg.PollInterval)
		}
	}

	for _, p := range pending {
		if err := p.Kill(); err != nil {
			logging.Warnf("daemons.Manager.stopOne kill failed daemon=%s pid=%d err=%v", spec.ID, p.PID(), err)
			continue
		}
		res.Killed = append(res.Killed, p.PID())
	}

	logging.Infof("daemons.Manager.stopOne daemon=%s stopped=%d killed=%d", spec.ID, len(res.Stopped), len(res.Killed))
	return res
}

// StartAll launches every spec in order, applying each spec's StartDelay
// after a successful launch. A launch failure is recorded and the sequence
// continues.
func (m *Manager) StartAll() []StartResult {
	results := make([]StartResult, 0, len(m.cfg.Specs))
	for _, spec := range m.cfg.Specs {
		pid, err := m.cfg.Launcher.Launch(spec)
		results = append(results, StartResult{Spec: spec, PID: pid, Err: err})
		if err != nil {
			logging.Warnf("daemons.Manager.StartAll launch failed daemon=%s err=%v", spec.ID, err)
			continue
		}
		logging.Infof("daemons.Manager.StartAll launched daemon=%s pid=%d", spec.ID, pid)
		if spec.StartDelay > 0 {
			logging.Debugf("daemons.Manager.StartAll settling daemon=%s delay=%s", spec.ID, spec.StartDelay)
			time.Sleep(spec.StartDelay)
		}
	}
	return results
}

// Statuses reports the running state of every spec by pattern match.
func (m *Manager) Statuses() []Status {
	statuses := make([]Status, 0, len(m.cfg.Specs))
	for _, spec := range m.cfg.Specs {
		st := Status{Spec: spec}
		procs, err := m.cfg.Finder.Find(spec.Match)
		if err == nil {
			for _, p := range procs {
				st.PIDs = append(st.PIDs, p.PID())
			}
			st.Running = len(st.PIDs) > 0
		}
		statuses = append(statuses, st)
	}
	return statuses
}
