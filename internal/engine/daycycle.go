// Time-of-day modulation — six wall-clock-hour buckets, each applying a
// fixed small delta to energy, arousal, and valence. Runs every five
// minutes and once immediately at engine start.
package engine

import "github.com/talgya/companion/internal/emotion"

type dayBucket struct {
	name    string
	energy  float64
	arousal float64
	valence float64
}

// dayBuckets covers the 24 wall-clock hours: night 0–5, early morning 6–8,
// morning 9–11, midday dip 12–14, evening 15–19, wind-down 20–23.
var dayBuckets = [6]dayBucket{
	{name: "night", energy: -0.02, arousal: -0.02},
	{name: "early_morning", energy: 0.02, valence: 0.01},
	{name: "morning", energy: 0.01, arousal: 0.01},
	{name: "midday", energy: -0.01, arousal: -0.01},
	{name: "evening", arousal: 0.01, valence: 0.01},
	{name: "wind_down", energy: -0.01, arousal: -0.02},
}

func bucketForHour(hour int) dayBucket {
	switch {
	case hour < 6:
		return dayBuckets[0]
	case hour < 9:
		return dayBuckets[1]
	case hour < 12:
		return dayBuckets[2]
	case hour < 15:
		return dayBuckets[3]
	case hour < 20:
		return dayBuckets[4]
	default:
		return dayBuckets[5]
	}
}

// applyDayCycle applies the bucket delta for the given wall-clock hour.
func applyDayCycle(s *emotion.State, hour int) {
	b := bucketForHour(hour)
	s.AdjustEnergy(b.energy)
	s.AdjustArousal(b.arousal)
	s.AdjustValence(b.valence)
}
