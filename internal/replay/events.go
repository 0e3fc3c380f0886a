package replay

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// Event types recorded alongside the rendered video.
const (
	EventKeyboard = "Keyboard"
	EventKeyTyped = "KeyTyped"
	EventFrame    = "Frame"
)

// Keycodes emitted for the steering arrow keys.
const (
	KeycodeLeft  = "Left"
	KeycodeRight = "Right"
)

// Event is one entry of the events.json log. Keyboard events set Keycode
// and IsPress, Frame events set FrameCounter, KeyTyped events set only
// Keycode. The unused fields stay nil so they are omitted on encode; a
// release still serializes is_press=false and frame 0 still serializes.
type Event struct {
	Type         string `json:"type"`
	Keycode      string `json:"keycode,omitempty"`
	IsPress      *bool  `json:"is_press,omitempty"`
	FrameCounter *int   `json:"frame_counter,omitempty"`
}

// KeyEvent builds a Keyboard press or release event.
func KeyEvent(keycode string, press bool) Event {
	return Event{Type: EventKeyboard, Keycode: keycode, IsPress: &press}
}

// KeyTypedEvent builds the merged form of a quick press+release.
func KeyTypedEvent(keycode string) Event {
	return Event{Type: EventKeyTyped, Keycode: keycode}
}

// FrameEvent builds the per-frame marker event.
func FrameEvent(frameCounter int) Event {
	return Event{Type: EventFrame, FrameCounter: &frameCounter}
}

// EventTracker turns per-frame key states into an event stream: a
// Keyboard event whenever a key changes state and a Frame event for
// every frame observed.
type EventTracker struct {
	events    []Event
	prevLeft  bool
	prevRight bool
}

// Observe records frame i with the given arrow-key states.
func (t *EventTracker) Observe(frameIndex int, left, right bool) {
	if left != t.prevLeft {
		t.events = append(t.events, KeyEvent(KeycodeLeft, left))
		t.prevLeft = left
	}
	if right != t.prevRight {
		t.events = append(t.events, KeyEvent(KeycodeRight, right))
		t.prevRight = right
	}
	t.events = append(t.events, FrameEvent(frameIndex))
}

// Events returns the compressed event stream observed so far.
func (t *EventTracker) Events() []Event {
	return CompressEvents(t.events)
}

// CompressEvents merges a key press answered by its matching release
// within the next five events into a single KeyTyped event. Events that
// sat between the pair are kept in order; everything else passes through
// untouched.
func CompressEvents(events []Event) []Event {
	result := make([]Event, 0, len(events))
	i := 0
	for i < len(events) {
		event := events[i]
		if event.Type != EventKeyboard || event.IsPress == nil || !*event.IsPress {
			result = append(result, event)
			i++
			continue
		}

		found := false
		limit := i + 6
		if limit > len(events) {
			limit = len(events)
		}
		for j := i + 1; j < limit; j++ {
			candidate := events[j]
			if candidate.Type == EventKeyboard && candidate.Keycode == event.Keycode &&
				candidate.IsPress != nil && !*candidate.IsPress {
				result = append(result, KeyTypedEvent(event.Keycode))
				result = append(result, events[i+1:j]...)
				i = j + 1
				found = true
				break
			}
		}
		if !found {
			result = append(result, event)
			i++
		}
	}
	return result
}

// WriteEvents encodes events to path in the layout the replay viewer
// loads next to video.mp4.
func WriteEvents(path string, events []Event) error {
	if events == nil {
		events = []Event{}
	}
	data, err := sonic.Marshal(events)
	if err != nil {
		return fmt.Errorf("replay: encode events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("replay: write events: %w", err)
	}
	return nil
}
