// Package tunnel bridges a local TCP port to the steering page on a remote
// device over SSH and keeps an interactive shell open for the session.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/logging"
)

var (
	ErrUnreachable = errors.New("tunnel: remote host unreachable")
	ErrBadConfig   = errors.New("tunnel: bad config")
)

// Client is one established SSH connection carrying the port forward and
// the interactive shell.
type Client struct {
	cfg config.TunnelConfig
	ssh *ssh.Client
}

// Dial connects and authenticates to the configured host. An unreachable
// host surfaces as ErrUnreachable so callers can map it to a non-zero exit.
func Dial(cfg config.TunnelConfig) (*Client, error) {
	addr, err := address(cfg)
	if err != nil {
		return nil, err
	}
	sshCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DialTimeout <= 0 {
		client, err := ssh.Dial("tcp", addr, sshCfg)
		if err != nil {
			return nil, classifyDialError(addr, err)
		}
		return &Client{cfg: cfg, ssh: client}, nil
	}

	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}
	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("tunnel: handshake with %s: %w", addr, err)
	}
	return &Client{cfg: cfg, ssh: ssh.NewClient(clientConn, chans, reqs)}, nil
}

func (c *Client) Close() error {
	return c.ssh.Close()
}

// Alive probes the connection with an openssh keepalive request.
func (c *Client) Alive() bool {
	_, _, err := c.ssh.SendRequest("keepalive@openssh.org", true, nil)
	return err == nil
}

// ForwardLocal starts listening on the configured local address and
// forwards every accepted connection to the remote address through the SSH
// connection. It returns the bound address; forwarding runs until ctx is
// done or the client closes.
func (c *Client) ForwardLocal(ctx context.Context) (net.Addr, error) {
	listener, err := net.Listen("tcp", c.cfg.LocalAddr)
	if err != nil {
		return nil, fmt.Errorf("tunnel: listen %s: %w", c.cfg.LocalAddr, err)
	}
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	go c.acceptLoop(listener)
	logging.Infof("tunnel.Client.ForwardLocal listening local=%s remote=%s", listener.Addr(), c.cfg.RemoteAddr)
	return listener.Addr(), nil
}

func (c *Client) acceptLoop(listener net.Listener) {
	for {
		local, err := listener.Accept()
		if err != nil {
			return
		}
		go c.bridge(local)
	}
}

// bridge copies bytes both ways and tears the pair down as soon as either
// side finishes, so a half-closed browser connection does not pin the
// remote socket.
func (c *Client) bridge(local net.Conn) {
	defer local.Close()

	remote, err := c.ssh.Dial("tcp", c.cfg.RemoteAddr)
	if err != nil {
		logging.Warnf("tunnel.Client.bridge remote dial failed addr=%s err=%v", c.cfg.RemoteAddr, err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	<-done
}

// KeepAlive probes the peer on the configured interval and closes the
// connection when it stops answering, which unblocks the shell wait.
func (c *Client) KeepAlive(ctx context.Context) {
	interval := c.cfg.KeepAlive
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Alive() {
				logging.Warnf("tunnel.Client.KeepAlive peer stopped answering host=%s", c.cfg.Host)
				c.Close()
				return
			}
		}
	}
}

func address(cfg config.TunnelConfig) (string, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return "", fmt.Errorf("%w: host is required", ErrBadConfig)
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func clientConfig(cfg config.TunnelConfig) (*ssh.ClientConfig, error) {
	if strings.TrimSpace(cfg.User) == "" {
		return nil, fmt.Errorf("%w: user is required", ErrBadConfig)
	}

	signer, err := loadSigner(cfg)
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if cfg.InsecureHostKey {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := knownHostsCallback(cfg.KnownHostsPath)
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.DialTimeout,
	}, nil
}

func loadSigner(cfg config.TunnelConfig) (ssh.Signer, error) {
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return nil, fmt.Errorf("%w: key path is required", ErrBadConfig)
	}
	keyPath, err := expandPath(cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("tunnel: read key %s: %w", keyPath, err)
	}
	if cfg.KeyPassphrase != "" {
		signer, err := ssh.ParsePrivateKeyWithPassphrase(privateKey, []byte(cfg.KeyPassphrase))
		if err != nil {
			return nil, fmt.Errorf("tunnel: parse key %s: %w", keyPath, err)
		}
		return signer, nil
	}
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("tunnel: parse key %s: %w", keyPath, err)
	}
	return signer, nil
}

func knownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tunnel: known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}
	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("tunnel: known hosts %s: %w", path, err)
	}
	return callback, nil
}

// expandPath resolves a leading ~ against the current user's home.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("tunnel: expand %s: %w", path, err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func classifyDialError(addr string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}
	return fmt.Errorf("tunnel: connect %s: %w", addr, err)
}
