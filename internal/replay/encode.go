package replay

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danmuck/steerctl/internal/tools"
)

// StitchVideo assembles the rendered frame_%06d.png sequence under
// framesDir into a 720p H.264 clip at outPath.
func StitchVideo(runner tools.CommandRunner, framesDir, outPath string, fps float64) error {
	_, stderr, _, err := runner.Run("ffmpeg",
		"-y",
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", filepath.Join(framesDir, "frame_%06d.png"),
		"-vf", "scale=-2:720",
		"-c:v", "libx264",
		"-profile:v", "high",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("replay: encode %s: %w: %s", outPath, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}
