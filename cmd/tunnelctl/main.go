package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/logging"
	"github.com/danmuck/steerctl/internal/tunnel"
)

const defaultConfigPath = "cmd/tunnelctl/config.toml"

func main() {
	logging.ConfigureRuntime()

	path := defaultConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.LoadTunnelConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunnelctl: %v\n", err)
		fmt.Fprintf(os.Stderr, "tunnelctl: generate one with: configgen -kind tunnel -output %s\n", path)
		os.Exit(1)
	}
	if err := config.ValidateTunnelConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tunnelctl: %v\n", err)
		os.Exit(1)
	}

	status, err := run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunnelctl: %v\n", err)
		os.Exit(1)
	}
	os.Exit(status)
}

// run keeps the forward and the shell on one SSH connection and hands the
// remote exit status through.
func run(cfg config.TunnelConfig) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := tunnel.Dial(cfg)
	if err != nil {
		if errors.Is(err, tunnel.ErrUnreachable) {
			return 0, fmt.Errorf("device unreachable: %w", err)
		}
		return 0, err
	}
	defer client.Close()

	return client.Run(ctx)
}
