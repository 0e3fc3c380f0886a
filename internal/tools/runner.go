package tools

import (
	"bytes"
	"errors"
	"os/exec"
)

// CommandRunner abstracts external command execution so pipeline stages can
// be tested against fakes.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// InputRunner executes a command with bytes supplied on stdin.
type InputRunner interface {
	RunInput(input []byte, name string, args ...string) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	return r.RunInput(nil, name, args...)
}

// tools command-runner implementation backed by os/exec. Exit code 127
// marks a command that could not be started at all.
func (r ExecRunner) RunInput(input []byte, name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(input) > 0 {
		cmd.Stdin = bytes.NewReader(input)
	}

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}
