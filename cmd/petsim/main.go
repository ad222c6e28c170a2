// Command petsim exercises the affective core headlessly: it synthesizes a
// smooth face-proximity signal from noise, scripts touch gestures through
// the real classifier, and reports the companion's state and selected
// behavior as the session unfolds. Useful for tuning delta tables without
// any camera or touch hardware attached.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/companion/internal/clock"
	"github.com/talgya/companion/internal/engine"
	"github.com/talgya/companion/internal/entropy"
	"github.com/talgya/companion/internal/gesture"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envInt64("PETSIM_SEED", 42)
	seconds := envInt64("PETSIM_SECONDS", 30)

	slog.Info("petsim starting", "seed", seed, "duration_s", seconds)

	// No persistence: a sim session is throwaway. The seeded source makes
	// the behavior sequence reproducible for a given seed.
	rng := entropy.NewSeeded(seed)
	eng := engine.New(nil, clock.Real(), rng)
	eng.Start()
	defer eng.Stop()

	cls := gesture.NewClassifier(clock.Real(), gesture.DefaultScale)
	touchEvents := cls.SubscribeEvents(16)
	go func() {
		for ev := range touchEvents {
			slog.Info("touch classified",
				"type", ev.Type.String(),
				"duration", fmt.Sprintf("%.2fs", ev.Duration),
				"velocity", fmt.Sprintf("%.0f", ev.Velocity),
			)
			eng.OnTouchEvent(ev)
		}
	}()

	proximity := opensimplex.NewNormalized(seed)
	start := time.Now()
	step := 0

	for time.Since(start) < time.Duration(seconds)*time.Second {
		t := float64(step) * 0.05

		// Smooth noise stands in for the camera's proximity signal; dips
		// below 0.2 read as the face leaving the frame.
		p := proximity.Eval2(t*0.3, 0)
		if p < 0.2 {
			eng.OnFaceLost()
		} else {
			eng.OnFaceDetected(p, 0)
		}

		// A scripted gesture every five seconds, alternating between a
		// quick tap and a slow petting drag.
		if step%100 == 0 && step > 0 {
			if (step/100)%2 == 0 {
				runTap(cls)
			} else {
				runPetting(cls)
			}
		}

		if step%20 == 0 {
			report(eng)
		}

		step++
		time.Sleep(50 * time.Millisecond)
	}

	report(eng)
	fmt.Println("petsim done.")
}

func report(eng *engine.Engine) {
	st := eng.Snapshot()
	b := eng.SelectBehavior()
	slog.Info("companion",
		"mood", st.DominantMood(),
		"behavior", b.String(),
		"valence", fmt.Sprintf("%.2f", st.Valence),
		"arousal", fmt.Sprintf("%.2f", st.Arousal),
		"energy", fmt.Sprintf("%.2f", st.Energy),
		"boredom", fmt.Sprintf("%.2f", st.Boredom),
		"attachment", fmt.Sprintf("%.3f", st.Attachment),
	)
}

// runTap presses and releases within the light-tap window.
func runTap(cls *gesture.Classifier) {
	now := time.Now()
	cls.Begin(gesture.Sample{Pos: gesture.Point{X: 0.5, Y: 0.5}, Time: now})
	time.Sleep(100 * time.Millisecond)
	cls.End(gesture.Sample{Pos: gesture.Point{X: 0.5, Y: 0.5}, Time: now.Add(100 * time.Millisecond)})
}

// runPetting drags slowly enough to pass the velocity gate.
func runPetting(cls *gesture.Classifier) {
	now := time.Now()
	cls.Begin(gesture.Sample{Pos: gesture.Point{X: 0.3, Y: 0.5}, Time: now})
	for i := 1; i <= 10; i++ {
		time.Sleep(80 * time.Millisecond)
		cls.Move(gesture.Sample{
			Pos:  gesture.Point{X: 0.3 + float64(i)*0.02, Y: 0.5},
			Time: now.Add(time.Duration(i) * 80 * time.Millisecond),
		})
	}
	cls.End(gesture.Sample{
		Pos:  gesture.Point{X: 0.5, Y: 0.5},
		Time: now.Add(800 * time.Millisecond),
	})
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid integer env var, using default", "key", key, "default", fallback)
	}
	return fallback
}
