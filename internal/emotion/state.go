// Package emotion — State implements the companion's five-axis affective model.
// All axes are clamped after every mutation; derived projections are pure
// functions of the axes, computed on read and never cached.
package emotion

import "math"

// Axis bounds and documented defaults. Valence and arousal default to the
// baselines the decay process converges toward, so a fresh companion is
// already at rest.
const (
	DefaultValence    = 0.3
	DefaultArousal    = 0.4
	DefaultEnergy     = 0.8
	DefaultAttachment = 0.1
	DefaultBoredom    = 0.2
)

// State holds the five affective axes.
// Valence ranges -1..1; the other four range 0..1.
type State struct {
	Valence    float64 `json:"valence"`    // Negative/positive affect
	Arousal    float64 `json:"arousal"`    // Activation level
	Energy     float64 `json:"energy"`     // Available stamina
	Attachment float64 `json:"attachment"` // Cumulative bond, slow-moving
	Boredom    float64 `json:"boredom"`    // Inactivity pressure
}

// DefaultState returns the documented resting state.
func DefaultState() State {
	return State{
		Valence:    DefaultValence,
		Arousal:    DefaultArousal,
		Energy:     DefaultEnergy,
		Attachment: DefaultAttachment,
		Boredom:    DefaultBoredom,
	}
}

// AdjustValence shifts valence by delta, clamped to [-1, 1].
// Non-finite deltas are ignored so a bad input can never poison the axis.
func (s *State) AdjustValence(delta float64) {
	if !isFinite(delta) {
		return
	}
	s.Valence = clamp(s.Valence+delta, -1, 1)
}

// AdjustArousal shifts arousal by delta, clamped to [0, 1].
func (s *State) AdjustArousal(delta float64) {
	if !isFinite(delta) {
		return
	}
	s.Arousal = clamp01(s.Arousal + delta)
}

// AdjustEnergy shifts energy by delta, clamped to [0, 1].
func (s *State) AdjustEnergy(delta float64) {
	if !isFinite(delta) {
		return
	}
	s.Energy = clamp01(s.Energy + delta)
}

// AdjustAttachment shifts attachment by delta, clamped to [0, 1].
func (s *State) AdjustAttachment(delta float64) {
	if !isFinite(delta) {
		return
	}
	s.Attachment = clamp01(s.Attachment + delta)
}

// AdjustBoredom shifts boredom by delta, clamped to [0, 1].
func (s *State) AdjustBoredom(delta float64) {
	if !isFinite(delta) {
		return
	}
	s.Boredom = clamp01(s.Boredom + delta)
}

// Mood is the categorical projection of valence and arousal.
type Mood string

const (
	MoodExcited Mood = "excited"
	MoodHappy   Mood = "happy"
	MoodAnxious Mood = "anxious"
	MoodSad     Mood = "sad"
	MoodSleepy  Mood = "sleepy"
	MoodNeutral Mood = "neutral"
)

// DominantMood classifies the current valence/arousal pairing.
// Evaluated in priority order; the valence thresholds are inclusive so
// valence 0.3 / arousal 0.5 lands on happy rather than neutral.
func (s State) DominantMood() Mood {
	switch {
	case s.Valence >= 0.3 && s.Arousal > 0.5:
		return MoodExcited
	case s.Valence >= 0.3:
		return MoodHappy
	case s.Valence <= -0.3 && s.Arousal > 0.5:
		return MoodAnxious
	case s.Valence <= -0.3:
		return MoodSad
	case s.Arousal < 0.2:
		return MoodSleepy
	default:
		return MoodNeutral
	}
}

// ExcitementLevel is the mean of arousal and energy, clamped to [0, 1].
func (s State) ExcitementLevel() float64 {
	return clamp01((s.Arousal + s.Energy) / 2)
}

// EngagementLevel weighs inverse boredom against attachment, clamped to [0, 1].
func (s State) EngagementLevel() float64 {
	return clamp01((1-s.Boredom)*0.7 + s.Attachment*0.3)
}

// Valid reports whether every axis holds a finite value inside its bounds.
// Used to reject corrupt persisted snapshots.
func (s State) Valid() bool {
	if !isFinite(s.Valence) || s.Valence < -1 || s.Valence > 1 {
		return false
	}
	for _, v := range [4]float64{s.Arousal, s.Energy, s.Attachment, s.Boredom} {
		if !isFinite(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
