// Behavior selection — weighted-random choice over nine presentation
// categories. Pure function of a State plus an injected random source, so
// selection sequences replay exactly under a seeded source.
package emotion

import (
	"github.com/talgya/companion/internal/entropy"
)

// Behavior enumerates the nine presentation categories.
// The enumeration order is the roulette subtraction order and must not change.
type Behavior uint8

const (
	BehaviorIdle Behavior = iota
	BehaviorExcited
	BehaviorPlayful
	BehaviorCurious
	BehaviorAffectionate
	BehaviorSleepy
	BehaviorAnxious
	BehaviorGrumpy
	BehaviorAttentionSeeking

	numBehaviors
)

var behaviorNames = [numBehaviors]string{
	"idle", "excited", "playful", "curious", "affectionate",
	"sleepy", "anxious", "grumpy", "attention_seeking",
}

func (b Behavior) String() string {
	if b < numBehaviors {
		return behaviorNames[b]
	}
	return "unknown"
}

// Presentation is the fixed tuple the rendering layer consumes per behavior.
// Values are hints, not computed here.
type Presentation struct {
	BlinkRate  float64 `json:"blink_rate"`  // Multiplier on the base blink interval
	PupilScale float64 `json:"pupil_scale"` // 1.0 = neutral pupil size
	MouthCurve float64 `json:"mouth_curve"` // -1 frown .. +1 smile
	SoundCue   string  `json:"sound_cue,omitempty"`
}

var presentations = [numBehaviors]Presentation{
	BehaviorIdle:             {BlinkRate: 1.0, PupilScale: 1.0, MouthCurve: 0.0},
	BehaviorExcited:          {BlinkRate: 1.6, PupilScale: 1.3, MouthCurve: 0.8, SoundCue: "chirp_high"},
	BehaviorPlayful:          {BlinkRate: 1.4, PupilScale: 1.2, MouthCurve: 0.6, SoundCue: "trill"},
	BehaviorCurious:          {BlinkRate: 1.2, PupilScale: 1.25, MouthCurve: 0.2, SoundCue: "hum_query"},
	BehaviorAffectionate:     {BlinkRate: 0.7, PupilScale: 1.15, MouthCurve: 0.7, SoundCue: "purr"},
	BehaviorSleepy:           {BlinkRate: 0.4, PupilScale: 0.8, MouthCurve: 0.1, SoundCue: "yawn"},
	BehaviorAnxious:          {BlinkRate: 2.0, PupilScale: 0.9, MouthCurve: -0.4, SoundCue: "whine_soft"},
	BehaviorGrumpy:           {BlinkRate: 0.9, PupilScale: 0.85, MouthCurve: -0.6, SoundCue: "grumble"},
	BehaviorAttentionSeeking: {BlinkRate: 1.3, PupilScale: 1.1, MouthCurve: 0.3, SoundCue: "chirp_low"},
}

// Presentation returns the behavior's fixed presentation tuple.
func (b Behavior) Presentation() Presentation {
	if b < numBehaviors {
		return presentations[b]
	}
	return presentations[BehaviorIdle]
}

// minWeight floors every candidate so no behavior is ever fully excluded.
const minWeight = 0.1

// behaviorWeights computes the candidate weights in enumeration order.
func behaviorWeights(s State) [numBehaviors]float64 {
	var w [numBehaviors]float64

	w[BehaviorIdle] = s.Boredom*2.0 + (1-s.Arousal)*1.5
	if s.Valence > 0 {
		w[BehaviorExcited] = s.Valence * s.Arousal * 3.0
	}
	w[BehaviorPlayful] = s.Energy*s.Arousal*2.0 + max0(s.Valence)*0.5
	w[BehaviorCurious] = s.Boredom*1.2 + s.Arousal*0.8
	w[BehaviorAffectionate] = s.Attachment*2.5 + max0(s.Valence)*1.0
	w[BehaviorSleepy] = (1-s.Energy)*2.0 + (1-s.Arousal)*1.0
	if s.Valence < 0 {
		w[BehaviorAnxious] = -s.Valence * s.Arousal * 2.5
		w[BehaviorGrumpy] = -s.Valence * (1 - s.Arousal) * 2.0
	}
	w[BehaviorAttentionSeeking] = s.Boredom*1.5 + s.Attachment*1.0

	for i := range w {
		if w[i] < minWeight {
			w[i] = minWeight
		}
	}
	return w
}

// SelectBehavior draws one behavior by roulette-wheel selection: a uniform
// value in [0, totalWeight) minus candidate weights in enumeration order
// until the remainder reaches zero. If floating-point rounding exhausts all
// candidates without a hit, idle is the fallback.
func SelectBehavior(s State, src entropy.Source) Behavior {
	w := behaviorWeights(s)

	total := 0.0
	for _, v := range w {
		total += v
	}

	r := src.Float64() * total
	for i, v := range w {
		r -= v
		if r <= 0 {
			return Behavior(i)
		}
	}
	return BehaviorIdle
}

func max0(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
