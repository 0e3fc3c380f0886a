package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/steerctl/internal/tools"
)

// ExtractFrames explodes a video into zero-based numbered PNG frames
// under dir, named <prefix>_000000.png onward, and returns their paths
// in frame order. Frame N of the video lands in file N, which lets the
// passthrough renderer reuse extracted frames directly.
func ExtractFrames(runner tools.CommandRunner, video, dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("replay: create frames dir %s: %w", dir, err)
	}
	pattern := filepath.Join(dir, prefix+"_%06d.png")
	_, stderr, _, err := runner.Run("ffmpeg",
		"-y",
		"-i", video,
		"-start_number", "0",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("replay: extract %s: %w: %s", video, err, strings.TrimSpace(string(stderr)))
	}

	frames, err := filepath.Glob(filepath.Join(dir, prefix+"_*.png"))
	if err != nil {
		return nil, fmt.Errorf("replay: list frames for %s: %w", video, err)
	}
	// Zero-padded numbering keeps lexical order equal to frame order.
	sort.Strings(frames)
	return frames, nil
}
