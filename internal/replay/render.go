package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/remeh/sizedwaitgroup"

	"github.com/danmuck/steerctl/internal/logging"
	"github.com/danmuck/steerctl/internal/tools"
)

// RenderTask is one frame handed to the overlay renderer.
type RenderTask struct {
	FrameIndex int
	RoadImage  string
	WideImage  string
	Telemetry  []byte
	OutputPath string
}

// Renderer paints overlay frames through an external renderer command
// using a bounded pool of workers. The command receives the frame's
// telemetry JSON on stdin plus --road/--wide/--out arguments and must
// write a PNG to the output path. An empty command degrades to copying
// the road frame through untouched, which keeps the pipeline usable on
// hosts without the overlay tool installed.
type Renderer struct {
	cmd     []string
	workers int
	runner  tools.InputRunner
}

// NewRenderer builds a renderer running cmd across at most workers
// concurrent frames.
func NewRenderer(cmd []string, workers int, runner tools.InputRunner) *Renderer {
	if workers <= 0 {
		workers = 1
	}
	return &Renderer{
		cmd:     append([]string{}, cmd...),
		workers: workers,
		runner:  runner,
	}
}

// RenderBatch renders every task and returns the per-frame failures.
// A failed frame is skipped, not fatal; callers decide how many losses
// they tolerate.
func (r *Renderer) RenderBatch(ctx context.Context, tasks []RenderTask) []error {
	queue := make(chan RenderTask)

	var mu sync.Mutex
	var failures []error

	swg := sizedwaitgroup.New(r.workers)
	for i := 0; i < r.workers; i++ {
		swg.Add()
		go func() {
			defer swg.Done()
			for task := range queue {
				if err := r.renderOne(task); err != nil {
					mu.Lock()
					if len(failures) < 3 {
						logging.Warnf("replay.Renderer.RenderBatch frame failed index=%d err=%v", task.FrameIndex, err)
					}
					failures = append(failures, err)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case queue <- task:
		}
	}
	close(queue)
	swg.Wait()

	if len(failures) > 0 {
		logging.Warnf("replay.Renderer.RenderBatch failures=%d total=%d", len(failures), len(tasks))
	}
	return failures
}

func (r *Renderer) renderOne(task RenderTask) error {
	if len(r.cmd) == 0 {
		return copyFile(task.RoadImage, task.OutputPath)
	}

	args := append([]string{}, r.cmd[1:]...)
	args = append(args, "--road", task.RoadImage)
	if task.WideImage != "" {
		args = append(args, "--wide", task.WideImage)
	}
	args = append(args, "--out", task.OutputPath)

	_, stderr, _, err := r.runner.RunInput(task.Telemetry, r.cmd[0], args...)
	if err != nil {
		return fmt.Errorf("replay: render frame %d: %w: %s", task.FrameIndex, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("replay: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("replay: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("replay: copy %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("replay: close %s: %w", dst, err)
	}
	return nil
}
