// Package gesture turns a raw pointer-sample stream into exactly one
// classified TouchEvent per physical contact.
package gesture

import (
	"time"

	"github.com/google/uuid"
)

// TouchType classifies a completed gesture.
type TouchType uint8

const (
	TouchLightTap TouchType = iota
	TouchHold
	TouchLongPress
	TouchOverHold
	TouchPetting
)

var touchNames = [...]string{"light_tap", "hold", "long_press", "over_hold", "petting"}

func (t TouchType) String() string {
	if int(t) < len(touchNames) {
		return touchNames[t]
	}
	return "unknown"
}

// Point is a normalized contact position, both axes in 0..1.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one raw pointer reading from the input layer.
type Sample struct {
	Pos  Point
	Time time.Time
}

// TouchEvent is the single classification result of one completed gesture.
// Velocity is points/second and zero for non-drag types.
type TouchEvent struct {
	ID       uuid.UUID `json:"id"`
	Type     TouchType `json:"type"`
	Duration float64   `json:"duration"` // Seconds from contact start to release
	Velocity float64   `json:"velocity"`
	Location Point     `json:"location"`
}

// Tick is a progressive-feedback notification emitted ~20 times per second
// while a contact is active.
type Tick struct {
	GestureID uuid.UUID `json:"gesture_id"`
	Elapsed   float64   `json:"elapsed"` // Seconds since contact start
	Phase     Phase     `json:"phase"`
}
