package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/steerctl/internal/testutil/testlog"
)

func TestEventTrackerEmitsChangesAndFrames(t *testing.T) {
	testlog.Start(t)

	tracker := &EventTracker{}
	tracker.Observe(0, false, false)
	tracker.Observe(1, true, false)
	tracker.Observe(2, true, false)
	tracker.Observe(3, false, true)

	// Raw stream before compression: a frame marker per observation plus
	// a keyboard event per state change.
	raw := tracker.events
	want := []Event{
		FrameEvent(0),
		KeyEvent(KeycodeLeft, true),
		FrameEvent(1),
		FrameEvent(2),
		KeyEvent(KeycodeLeft, false),
		KeyEvent(KeycodeRight, true),
		FrameEvent(3),
	}
	if len(raw) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(raw))
	}
	for i := range want {
		if !sameEvent(raw[i], want[i]) {
			t.Fatalf("event %d = %+v, want %+v", i, raw[i], want[i])
		}
	}
}

func sameEvent(a, b Event) bool {
	if a.Type != b.Type || a.Keycode != b.Keycode {
		return false
	}
	if (a.IsPress == nil) != (b.IsPress == nil) {
		return false
	}
	if a.IsPress != nil && *a.IsPress != *b.IsPress {
		return false
	}
	if (a.FrameCounter == nil) != (b.FrameCounter == nil) {
		return false
	}
	if a.FrameCounter != nil && *a.FrameCounter != *b.FrameCounter {
		return false
	}
	return true
}

func TestCompressEventsMergesQuickTaps(t *testing.T) {
	testlog.Start(t)

	events := []Event{
		KeyEvent(KeycodeLeft, true),
		FrameEvent(1),
		FrameEvent(2),
		KeyEvent(KeycodeLeft, false),
		FrameEvent(3),
	}
	got := CompressEvents(events)

	want := []Event{
		KeyTypedEvent(KeycodeLeft),
		FrameEvent(1),
		FrameEvent(2),
		FrameEvent(3),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !sameEvent(got[i], want[i]) {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCompressEventsKeepsLongHolds(t *testing.T) {
	testlog.Start(t)

	// Release arrives six events after the press, outside the merge
	// window, so both survive unchanged.
	events := []Event{
		KeyEvent(KeycodeRight, true),
		FrameEvent(1),
		FrameEvent(2),
		FrameEvent(3),
		FrameEvent(4),
		FrameEvent(5),
		KeyEvent(KeycodeRight, false),
	}
	got := CompressEvents(events)
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i := range events {
		if !sameEvent(got[i], events[i]) {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}
}

func TestCompressEventsIgnoresOtherKeys(t *testing.T) {
	testlog.Start(t)

	// A release for a different key must not close the press.
	events := []Event{
		KeyEvent(KeycodeLeft, true),
		KeyEvent(KeycodeRight, false),
		FrameEvent(1),
	}
	got := CompressEvents(events)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != EventKeyboard || got[0].IsPress == nil || !*got[0].IsPress {
		t.Fatalf("press was rewritten: %+v", got[0])
	}
}

func TestWriteEventsSerializesOptionalFields(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "events.json")
	events := []Event{
		KeyEvent(KeycodeLeft, false),
		FrameEvent(0),
		KeyTypedEvent(KeycodeRight),
	}
	if err := WriteEvents(path, events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, `"is_press":false`) {
		t.Fatalf("release lost is_press=false: %s", body)
	}
	if !strings.Contains(body, `"frame_counter":0`) {
		t.Fatalf("frame 0 lost its counter: %s", body)
	}
	if strings.Contains(body, `"KeyTyped","keycode":"Right","is_press"`) {
		t.Fatalf("KeyTyped grew an is_press field: %s", body)
	}
}

func TestWriteEventsEmptyIsArray(t *testing.T) {
	testlog.Start(t)

	path := filepath.Join(t.TempDir(), "events.json")
	if err := WriteEvents(path, nil); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %s", data)
	}
}
