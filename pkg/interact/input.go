// Package interact turns per-frame input into gestures on a diagram: node
// drags that end in a reparent or detach, resizing explicit containers,
// dragging transition labels, and the two-click transition wizard.
//
// Only one gesture is active at a time. Every gesture can be cancelled
// with Escape or a secondary press, which restores the state captured when
// it began.
package interact

import (
	"math"

	"github.com/ha1tch/hsm-toolkit/pkg/geom"
)

// Key is a key press the controller reacts to.
type Key int

const (
	KeyEscape Key = iota + 1
	KeyEnter
)

// Snapshot is one frame of input.
type Snapshot struct {
	Pointer geom.Point

	// Primary button state and its transitions this frame.
	Down     bool
	Pressed  bool
	Released bool
	Clicked  bool

	// SecondaryPressed cancels whatever gesture is active.
	SecondaryPressed bool

	Keys []Key
}

// KeyPressed reports whether k was pressed this frame.
func (s Snapshot) KeyPressed(k Key) bool {
	for _, key := range s.Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Tracker derives button transitions from raw polled state. A release
// within DeadZone of the press position counts as a click.
type Tracker struct {
	DeadZone float64

	down  bool
	start geom.Point
	moved bool
}

// Next builds the snapshot for this frame.
func (t *Tracker) Next(pointer geom.Point, primary, secondary bool, keys ...Key) Snapshot {
	s := Snapshot{Pointer: pointer, Down: primary, SecondaryPressed: secondary, Keys: keys}

	switch {
	case primary && !t.down:
		s.Pressed = true
		t.start = pointer
		t.moved = false
	case primary && t.down:
		if math.Hypot(pointer.X-t.start.X, pointer.Y-t.start.Y) > t.DeadZone {
			t.moved = true
		}
	case !primary && t.down:
		s.Released = true
		s.Clicked = !t.moved
	}
	t.down = primary
	return s
}
