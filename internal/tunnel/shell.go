package tunnel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/danmuck/steerctl/internal/logging"
)

// Shell runs one interactive remote shell bound to the local terminal and
// returns the remote exit status. When stdin is a terminal it is switched
// to raw mode for the duration and local resizes reach the remote pty.
func (c *Client) Shell(ctx context.Context) (int, error) {
	session, err := c.ssh.NewSession()
	if err != nil {
		return 0, fmt.Errorf("tunnel: open session: %w", err)
	}
	defer session.Close()

	session.Stdin = os.Stdin
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return 0, fmt.Errorf("tunnel: raw terminal: %w", err)
		}
		defer term.Restore(stdinFd, oldState)

		width, height, err := term.GetSize(stdinFd)
		if err != nil {
			width, height = 80, 24
		}
		termName := os.Getenv("TERM")
		if termName == "" {
			termName = "xterm-256color"
		}
		modes := ssh.TerminalModes{
			ssh.ECHO:          1,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty(termName, height, width, modes); err != nil {
			return 0, fmt.Errorf("tunnel: request pty: %w", err)
		}
		go propagateWindowSize(ctx, session, stdinFd)
	}

	if err := session.Shell(); err != nil {
		return 0, fmt.Errorf("tunnel: start shell: %w", err)
	}

	err = session.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	return 0, fmt.Errorf("tunnel: shell ended: %w", err)
}

// propagateWindowSize forwards local terminal resizes to the remote pty.
func propagateWindowSize(ctx context.Context, session *ssh.Session, fd int) {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			width, height, err := term.GetSize(fd)
			if err != nil {
				continue
			}
			if err := session.WindowChange(height, width); err != nil {
				return
			}
		}
	}
}

// Run is one whole tunnel session: local forward plus interactive shell,
// until the shell exits or the connection drops. Returns the remote exit
// status.
func (c *Client) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := c.ForwardLocal(ctx); err != nil {
		return 0, err
	}
	go c.KeepAlive(ctx)

	status, err := c.Shell(ctx)
	if err != nil {
		return 0, err
	}
	logging.Infof("tunnel.Client.Run shell exited status=%d", status)
	return status, nil
}
