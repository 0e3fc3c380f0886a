package replay

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/steerctl/internal/testutil/testlog"
)

const sampleTelemetry = `{
  "startTime": 1700000000,
  "chunkIndex": 2,
  "frames": [
    {"frame": 0, "videoTime": 0, "keys": {"left": false, "right": false}, "steer": 0, "gas": false, "brake": false, "accel": 0, "angle": 0},
    {"frame": 5, "videoTime": 0.25, "keys": {"left": true, "right": false}, "steer": -0.4, "gas": false, "brake": false, "accel": 0.1, "angle": -2.5},
    {"frame": 6, "videoTime": 0.3, "keys": {"left": true, "right": false}, "steer": -0.5, "gas": true, "brake": false, "accel": 0.2, "angle": -3},
    {"frame": 9, "videoTime": 0.45, "keys": {"left": false, "right": true}, "steer": 0.3, "gas": false, "brake": true, "accel": -0.1, "angle": 1.5}
  ]
}`

func writeTelemetry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry_1700000000_chunk2.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write telemetry: %v", err)
	}
	return path
}

func TestLoadTelemetryNormalizesFrames(t *testing.T) {
	testlog.Start(t)

	telemetry, err := LoadTelemetry(writeTelemetry(t, sampleTelemetry))
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}
	if telemetry.StartTime != 1700000000 || telemetry.ChunkIndex != 2 {
		t.Fatalf("unexpected header: start=%d chunk=%d", telemetry.StartTime, telemetry.ChunkIndex)
	}
	// Frame 0 is a pre-encoder flush and must be dropped.
	if len(telemetry.Frames) != 3 {
		t.Fatalf("expected 3 valid frames, got %d", len(telemetry.Frames))
	}
	if telemetry.FrameOffset != 5 {
		t.Fatalf("expected offset 5, got %d", telemetry.FrameOffset)
	}
	first, last := telemetry.FrameRange()
	if first != 0 || last != 4 {
		t.Fatalf("expected range 0-4, got %d-%d", first, last)
	}
}

func TestFrameAtNearestNeighbor(t *testing.T) {
	testlog.Start(t)

	telemetry, err := LoadTelemetry(writeTelemetry(t, sampleTelemetry))
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}

	// Normalized sample positions are 0, 1, and 4.
	cases := []struct {
		index   int
		wantRaw int
	}{
		{index: 0, wantRaw: 5},
		{index: 1, wantRaw: 6},
		{index: 2, wantRaw: 6}, // closer to 1 than to 4
		{index: 3, wantRaw: 9}, // closer to 4 than to 1
		{index: 4, wantRaw: 9},
		{index: 50, wantRaw: 9}, // clamps to last
		{index: -1, wantRaw: 5}, // clamps to first
	}
	for _, tc := range cases {
		frame, err := telemetry.FrameAt(tc.index)
		if err != nil {
			t.Fatalf("FrameAt(%d): %v", tc.index, err)
		}
		if frame.FrameNumber != tc.wantRaw {
			t.Fatalf("FrameAt(%d) = frame %d, want %d", tc.index, frame.FrameNumber, tc.wantRaw)
		}
	}
}

func TestFrameAtEquidistantPrefersEarlier(t *testing.T) {
	testlog.Start(t)

	body := `{"startTime": 1, "chunkIndex": 0, "frames": [
	  {"frame": 10, "keys": {}},
	  {"frame": 14, "keys": {}}
	]}`
	telemetry, err := LoadTelemetry(writeTelemetry(t, body))
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}
	frame, err := telemetry.FrameAt(2)
	if err != nil {
		t.Fatalf("FrameAt: %v", err)
	}
	if frame.FrameNumber != 10 {
		t.Fatalf("expected earlier sample on tie, got frame %d", frame.FrameNumber)
	}
}

func TestFrameAtEmptyTelemetry(t *testing.T) {
	testlog.Start(t)

	body := `{"startTime": 1, "chunkIndex": 0, "frames": [{"frame": 0, "keys": {}}]}`
	telemetry, err := LoadTelemetry(writeTelemetry(t, body))
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}
	if _, err := telemetry.FrameAt(0); !errors.Is(err, ErrNoTelemetry) {
		t.Fatalf("expected ErrNoTelemetry, got %v", err)
	}
}

func TestLoadTelemetryRejectsGarbage(t *testing.T) {
	testlog.Start(t)

	if _, err := LoadTelemetry(writeTelemetry(t, "{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOverlayJSONFieldNames(t *testing.T) {
	testlog.Start(t)

	frame := Frame{
		Keys:  KeyState{Left: true},
		Steer: -0.4,
		Gas:   true,
		Angle: -2.5,
	}
	data, err := frame.OverlayJSON()
	if err != nil {
		t.Fatalf("OverlayJSON: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"keys_left":true`, `"keys_right":false`, `"steer":-0.4`, `"gas":true`, `"brake":false`, `"angle":-2.5`} {
		if !strings.Contains(body, want) {
			t.Fatalf("overlay JSON missing %s: %s", want, body)
		}
	}
}
