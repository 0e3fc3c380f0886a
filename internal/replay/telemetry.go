package replay

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bytedance/sonic"
)

// ErrNoTelemetry reports a telemetry file with no usable samples.
var ErrNoTelemetry = errors.New("replay: no telemetry frames")

// KeyState is the arrow-key state captured with one telemetry sample.
type KeyState struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Frame is one telemetry sample aligned to a video frame.
type Frame struct {
	FrameNumber int      `json:"frame"`
	VideoTime   float64  `json:"videoTime"`
	Keys        KeyState `json:"keys"`
	Steer       float64  `json:"steer"`
	Gas         bool     `json:"gas"`
	Brake       bool     `json:"brake"`
	Accel       float64  `json:"accel"`
	Angle       float64  `json:"angle"`
}

// overlayFrame is the subset of a sample the overlay renderer consumes.
type overlayFrame struct {
	KeysLeft  bool    `json:"keys_left"`
	KeysRight bool    `json:"keys_right"`
	Steer     float64 `json:"steer"`
	Gas       bool    `json:"gas"`
	Brake     bool    `json:"brake"`
	Accel     float64 `json:"accel"`
	Angle     float64 `json:"angle"`
}

// OverlayJSON encodes the sample in the flat form the overlay renderer
// reads from stdin.
func (f Frame) OverlayJSON() ([]byte, error) {
	data, err := sonic.Marshal(overlayFrame{
		KeysLeft:  f.Keys.Left,
		KeysRight: f.Keys.Right,
		Steer:     f.Steer,
		Gas:       f.Gas,
		Brake:     f.Brake,
		Accel:     f.Accel,
		Angle:     f.Angle,
	})
	if err != nil {
		return nil, fmt.Errorf("replay: encode overlay frame: %w", err)
	}
	return data, nil
}

// ChunkTelemetry holds one chunk's samples with frame numbers normalized
// to a 0-based index. The recorder occasionally flushes samples before the
// encoder has produced a frame; those carry frame 0 or below and are
// dropped on load.
type ChunkTelemetry struct {
	StartTime   int64
	ChunkIndex  int
	Frames      []Frame
	FrameOffset int

	frameNums []int
}

type telemetryFile struct {
	StartTime  int64   `json:"startTime"`
	ChunkIndex int     `json:"chunkIndex"`
	Frames     []Frame `json:"frames"`
}

// LoadTelemetry reads and normalizes one chunk telemetry file. Chunks
// carry thousands of samples, so decoding goes through sonic.
func LoadTelemetry(path string) (*ChunkTelemetry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: read telemetry %s: %w", path, err)
	}
	var raw telemetryFile
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("replay: parse telemetry %s: %w", path, err)
	}

	valid := make([]Frame, 0, len(raw.Frames))
	for _, frame := range raw.Frames {
		if frame.FrameNumber > 0 {
			valid = append(valid, frame)
		}
	}
	telemetry := &ChunkTelemetry{
		StartTime:  raw.StartTime,
		ChunkIndex: raw.ChunkIndex,
		Frames:     valid,
	}
	if len(valid) > 0 {
		telemetry.FrameOffset = valid[0].FrameNumber
		telemetry.frameNums = make([]int, len(valid))
		for i, frame := range valid {
			telemetry.frameNums[i] = frame.FrameNumber - telemetry.FrameOffset
		}
	}
	return telemetry, nil
}

// FrameAt returns the sample nearest to the given 0-based video frame.
// Indexes outside the recorded span clamp to the first or last sample.
func (t *ChunkTelemetry) FrameAt(frameIndex int) (Frame, error) {
	if len(t.Frames) == 0 {
		return Frame{}, ErrNoTelemetry
	}
	idx := sort.SearchInts(t.frameNums, frameIndex)
	if idx == 0 {
		return t.Frames[0], nil
	}
	if idx >= len(t.Frames) {
		return t.Frames[len(t.Frames)-1], nil
	}
	if absInt(t.frameNums[idx]-frameIndex) < absInt(t.frameNums[idx-1]-frameIndex) {
		return t.Frames[idx], nil
	}
	return t.Frames[idx-1], nil
}

// FrameRange reports the normalized frame span covered by the samples.
func (t *ChunkTelemetry) FrameRange() (first, last int) {
	if len(t.frameNums) == 0 {
		return 0, 0
	}
	return t.frameNums[0], t.frameNums[len(t.frameNums)-1]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
