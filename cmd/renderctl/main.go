package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/logging"
	"github.com/danmuck/steerctl/internal/replay"
)

func main() {
	configPath := flag.String("config", "", "optional render config file")
	output := flag.String("output", "", "output directory (default: <input-dir>/rendered)")
	template := flag.String("template", "", "overlay template passed to the renderer")
	renderer := flag.String("renderer", "", "overlay renderer command (empty copies road frames through)")
	workers := flag.Int("workers", 0, "parallel render workers")
	fps := flag.Float64("fps", 0, "output video fps")
	session := flag.Int64("session", 0, "render only this session timestamp")
	chunk := flag.Int("chunk", 0, "render only this chunk index")
	flag.Parse()

	logging.ConfigureRuntime()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: renderctl [flags] <input-dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.DefaultRenderConfig()
	if *configPath != "" {
		loaded, err := config.LoadRenderConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "renderctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.InputDir = flag.Arg(0)
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *template != "" {
		cfg.TemplatePath = *template
	}
	if *renderer != "" {
		cfg.RendererCmd = strings.Fields(*renderer)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if err := config.ValidateRenderConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "renderctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := replay.NewPipeline(cfg)
	results, err := pipeline.Run(ctx, replay.Filter{Session: *session, Chunk: *chunk})
	if err != nil {
		if errors.Is(err, replay.ErrNoSessions) {
			fmt.Fprintf(os.Stderr, "renderctl: %v (need road_*.webm + telemetry_*.json pairs)\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "renderctl: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	fmt.Printf("Rendered %d chunk(s) to %s\n", len(results)-failed, pipeline.OutputDir())
	if failed > 0 {
		fmt.Printf("%d chunk(s) failed, see log output\n", failed)
		os.Exit(1)
	}
}
