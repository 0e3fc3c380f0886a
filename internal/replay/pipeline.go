package replay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/logging"
	"github.com/danmuck/steerctl/internal/tools"
)

// ErrNoSessions reports an input directory with no complete recordings.
var ErrNoSessions = errors.New("replay: no sessions found")

// Filter narrows a run to one session timestamp and/or one chunk index.
// Zero values match everything.
type Filter struct {
	Session int64
	Chunk   int
}

// ChunkResult is the outcome of rendering one chunk. Err is set when the
// chunk failed outright; Failed counts individual frames the renderer
// lost inside an otherwise successful chunk.
type ChunkResult struct {
	Chunk  Chunk
	ID     string
	Dir    string
	Frames int
	Failed int
	Err    error
}

// Pipeline runs discovery, overlay rendering, and encoding end to end.
type Pipeline struct {
	cfg    config.RenderConfig
	runner tools.CommandRunner
	input  tools.InputRunner
}

// NewPipeline builds a pipeline that executes ffmpeg and the overlay
// renderer on the local host.
func NewPipeline(cfg config.RenderConfig) *Pipeline {
	runner := tools.ExecRunner{}
	return &Pipeline{cfg: cfg, runner: runner, input: runner}
}

// NewPipelineWithRunners builds a pipeline with injected command runners.
func NewPipelineWithRunners(cfg config.RenderConfig, runner tools.CommandRunner, input tools.InputRunner) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner, input: input}
}

// OutputDir resolves the destination directory, defaulting to
// <input_dir>/rendered.
func (p *Pipeline) OutputDir() string {
	if p.cfg.OutputDir != "" {
		return p.cfg.OutputDir
	}
	return filepath.Join(p.cfg.InputDir, "rendered")
}

// Run renders every chunk matching the filter and writes the shuffled
// index.txt the viewer loads clips from. A failed chunk is recorded in
// its result and logged; it does not abort the remaining chunks.
func (p *Pipeline) Run(ctx context.Context, filter Filter) ([]ChunkResult, error) {
	start := time.Now()

	sessions, err := DiscoverSessions(p.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	if filter.Session != 0 {
		kept := sessions[:0]
		for _, session := range sessions {
			if session.Timestamp == filter.Session {
				kept = append(kept, session)
			}
		}
		sessions = kept
		if len(sessions) == 0 {
			return nil, fmt.Errorf("%w: session %d", ErrNoSessions, filter.Session)
		}
	}

	outputDir := p.OutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("replay: create output dir %s: %w", outputDir, err)
	}

	var results []ChunkResult
	var rendered []string
	for _, session := range sessions {
		logging.Infof("replay.Pipeline.Run session=%d chunks=%d", session.Timestamp, len(session.Chunks))
		for _, chunk := range session.Chunks {
			if filter.Chunk != 0 && chunk.Index != filter.Chunk {
				continue
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}
			result := p.renderChunk(ctx, chunk, outputDir)
			results = append(results, result)
			if result.Err != nil {
				logging.Errorf("replay.Pipeline.Run chunk failed session=%d chunk=%d err=%v",
					chunk.Timestamp, chunk.Index, result.Err)
				continue
			}
			rendered = append(rendered, result.ID)
		}
	}

	if len(rendered) > 0 {
		if err := writeIndex(outputDir, rendered); err != nil {
			return results, err
		}
	}
	logging.Infof("replay.Pipeline.Run done rendered=%d elapsed=%s",
		len(rendered), durafmt.Parse(time.Since(start)).LimitFirstN(2).String())
	return results, nil
}

// renderChunk produces <output>/<uuid>/video.mp4 plus events.json for one
// chunk. Working frames live in a temp dir next to the output and are
// removed when the chunk finishes, successful or not.
func (p *Pipeline) renderChunk(ctx context.Context, chunk Chunk, outputDir string) ChunkResult {
	result := ChunkResult{Chunk: chunk, ID: uuid.NewString()}
	chunkDir := filepath.Join(outputDir, result.ID)
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		result.Err = fmt.Errorf("replay: create chunk dir %s: %w", chunkDir, err)
		return result
	}
	result.Dir = chunkDir
	logging.Infof("replay.Pipeline.renderChunk chunk=%d id=%s", chunk.Index, result.ID)

	telemetry, err := LoadTelemetry(chunk.Telemetry)
	if err != nil {
		result.Err = err
		return result
	}
	first, last := telemetry.FrameRange()
	logging.Debugf("replay.Pipeline.renderChunk telemetry span=%d-%d offset=%d",
		first, last, telemetry.FrameOffset)

	framesDir := filepath.Join(outputDir, fmt.Sprintf("frames_%d_%03d", chunk.Timestamp, chunk.Index))
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		result.Err = fmt.Errorf("replay: create frames dir %s: %w", framesDir, err)
		return result
	}
	defer os.RemoveAll(framesDir)

	inputDir := filepath.Join(framesDir, "inputs")

	var roadFrames, wideFrames []string
	var group errgroup.Group
	group.Go(func() error {
		frames, err := ExtractFrames(p.runner, chunk.RoadVideo, inputDir, "road")
		roadFrames = frames
		return err
	})
	if chunk.WideVideo != "" {
		group.Go(func() error {
			frames, err := ExtractFrames(p.runner, chunk.WideVideo, inputDir, "wide")
			wideFrames = frames
			return err
		})
	}
	if err := group.Wait(); err != nil {
		result.Err = err
		return result
	}
	if len(roadFrames) == 0 {
		result.Err = fmt.Errorf("replay: no frames extracted from %s", chunk.RoadVideo)
		return result
	}

	tracker := &EventTracker{}
	tasks := make([]RenderTask, 0, len(roadFrames))
	for i, road := range roadFrames {
		frame, err := telemetry.FrameAt(i)
		if err != nil {
			result.Err = err
			return result
		}
		tracker.Observe(i, frame.Keys.Left, frame.Keys.Right)

		overlay, err := frame.OverlayJSON()
		if err != nil {
			result.Err = err
			return result
		}
		wide := ""
		if i < len(wideFrames) {
			wide = wideFrames[i]
		}
		tasks = append(tasks, RenderTask{
			FrameIndex: i,
			RoadImage:  road,
			WideImage:  wide,
			Telemetry:  overlay,
			OutputPath: filepath.Join(framesDir, fmt.Sprintf("frame_%06d.png", i)),
		})
	}
	result.Frames = len(tasks)

	cmd := append([]string{}, p.cfg.RendererCmd...)
	if len(cmd) > 0 && p.cfg.TemplatePath != "" {
		cmd = append(cmd, "--template", p.cfg.TemplatePath)
	}
	renderer := NewRenderer(cmd, p.cfg.Workers, p.input)
	result.Failed = len(renderer.RenderBatch(ctx, tasks))

	if err := WriteEvents(filepath.Join(chunkDir, "events.json"), tracker.Events()); err != nil {
		result.Err = err
		return result
	}
	if err := StitchVideo(p.runner, framesDir, filepath.Join(chunkDir, "video.mp4"), p.cfg.FPS); err != nil {
		result.Err = err
		return result
	}
	return result
}

// writeIndex shuffles the rendered chunk IDs into index.txt so the viewer
// serves clips in no particular order.
func writeIndex(outputDir string, ids []string) error {
	shuffled := append([]string{}, ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var b strings.Builder
	for _, id := range shuffled {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	path := filepath.Join(outputDir, "index.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("replay: write index %s: %w", path, err)
	}
	logging.Infof("replay.writeIndex entries=%d path=%s", len(shuffled), path)
	return nil
}
