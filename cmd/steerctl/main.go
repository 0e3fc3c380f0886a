package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/daemons"
	"github.com/danmuck/steerctl/internal/logging"
	"github.com/danmuck/steerctl/internal/params"
)

func main() {
	logging.ConfigureRuntime()

	cfg := config.DefaultLauncherConfig()
	if len(os.Args) > 1 {
		loaded, err := config.LoadLauncherConfig(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "steerctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "steerctl: %v\n", err)
		os.Exit(1)
	}
}

// run prepares the device and hands it over to the steering daemons. The
// debug flag write is the one step that must land; stop and launch problems
// are reported and skipped so a half-broken device still comes up as far as
// it can.
func run(cfg config.LauncherConfig) error {
	store := params.NewStore(cfg.ParamsRoot)
	if err := store.Put(params.JoystickDebugMode, []byte(params.DebugModeEnabled)); err != nil {
		return fmt.Errorf("enable joystick debug mode: %w", err)
	}
	logging.Infof("steerctl debug mode on root=%s", store.Root())

	manager := daemons.NewManager(daemons.ManagerConfig{
		Specs:    config.DaemonSpecs(cfg),
		Launcher: daemons.ExecLauncher{LogDir: cfg.LogDir},
	})

	for _, result := range manager.StopAll() {
		if result.Err != nil {
			logging.Warnf("steerctl stop %s err=%v", result.Spec.ID, result.Err)
		}
	}
	for _, result := range manager.StartAll() {
		if result.Err != nil {
			logging.Warnf("steerctl launch %s err=%v", result.Spec.ID, result.Err)
		}
	}

	printInstructions(os.Stdout, cfg)
	return nil
}

func printInstructions(w io.Writer, cfg config.LauncherConfig) {
	fmt.Fprintln(w, "Steering daemons launched.")
	fmt.Fprintf(w, "  On the device network: http://<device-ip>:%d\n", cfg.WebPort)
	fmt.Fprintf(w, "  Over SSH: run tunnelctl, then open http://localhost:%d\n", cfg.WebPort)
	fmt.Fprintln(w, "Arrow keys steer. Hold to ramp, release to recenter.")
}
