package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/steerctl/internal/testutil/testlog"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDiscoverSessionsPairsAndOrders(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()

	// Older session with two complete chunks, wide only on the first.
	touch(t, dir, "road_100_chunk0.webm")
	touch(t, dir, "wide_100_chunk0.webm")
	touch(t, dir, "telemetry_100_chunk0.json")
	touch(t, dir, "road_100_chunk1.webm")
	touch(t, dir, "telemetry_100_chunk1.json")

	// Newer session with one complete chunk.
	touch(t, dir, "road_200_chunk0.webm")
	touch(t, dir, "telemetry_200_chunk0.json")

	// Incomplete chunks and noise.
	touch(t, dir, "road_100_chunk2.webm")
	touch(t, dir, "telemetry_300_chunk0.json")
	touch(t, dir, "notes.txt")

	sessions, err := DiscoverSessions(dir)
	if err != nil {
		t.Fatalf("DiscoverSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Timestamp != 200 || sessions[1].Timestamp != 100 {
		t.Fatalf("expected newest first, got %d then %d", sessions[0].Timestamp, sessions[1].Timestamp)
	}

	old := sessions[1]
	if len(old.Chunks) != 2 {
		t.Fatalf("expected 2 chunks in session 100, got %d", len(old.Chunks))
	}
	if old.Chunks[0].Index != 0 || old.Chunks[1].Index != 1 {
		t.Fatalf("chunks out of order: %d, %d", old.Chunks[0].Index, old.Chunks[1].Index)
	}
	if old.Chunks[0].WideVideo == "" {
		t.Fatalf("chunk 0 lost its wide video")
	}
	if old.Chunks[1].WideVideo != "" {
		t.Fatalf("chunk 1 invented a wide video: %s", old.Chunks[1].WideVideo)
	}
	if old.Chunks[0].RoadVideo != filepath.Join(dir, "road_100_chunk0.webm") {
		t.Fatalf("unexpected road path: %s", old.Chunks[0].RoadVideo)
	}
}

func TestDiscoverSessionsEmptyDir(t *testing.T) {
	testlog.Start(t)

	sessions, err := DiscoverSessions(t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestDiscoverSessionsMissingDir(t *testing.T) {
	testlog.Start(t)

	if _, err := DiscoverSessions(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
