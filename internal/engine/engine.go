// Package engine provides the affective engine: the single authoritative
// owner of the companion's emotion state. Every mutation — event handlers
// and the three periodic background processes alike — passes through one
// command loop, so concurrent callers never interleave partial axis
// updates. Committed state is published atomically and persisted
// best-effort off the mutation path.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/companion/internal/clock"
	"github.com/talgya/companion/internal/emotion"
	"github.com/talgya/companion/internal/entropy"
	"github.com/talgya/companion/internal/gesture"
)

// Periodic process schedule.
const (
	decayInterval    = time.Second
	boredomInterval  = 30 * time.Second
	dayCycleInterval = 5 * time.Minute
)

// Baseline decay: valence and arousal step a fixed ±0.02 toward their
// baselines each second, freezing once within tolerance. Deliberately not
// proportional decay — the fixed step is part of the observable timing.
const (
	baselineValence = emotion.DefaultValence
	baselineArousal = emotion.DefaultArousal
	decayStep       = 0.02
	decayTolerance  = 0.01
)

const (
	cmdBuffer = 64
	maxEvents = 256
)

// SnapshotStore persists the single keyed emotion snapshot.
type SnapshotStore interface {
	LoadSnapshot() (emotion.State, bool, error)
	SaveSnapshot(emotion.State) error
}

// Event is one committed mutation, kept in a bounded recent-events log.
type Event struct {
	Time   time.Time    `json:"time"`
	Source string       `json:"source"`
	Detail string       `json:"detail,omitempty"`
	Mood   emotion.Mood `json:"mood"`
}

type command struct {
	source string
	detail string
	fn     func(*emotion.State)
}

// Engine owns the canonical emotion state.
type Engine struct {
	store SnapshotStore
	clk   clock.Clock
	rng   entropy.Source

	cmds        chan command
	stop        chan struct{}
	loopDone    chan struct{}
	persistCh   chan emotion.State
	persistDone chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once

	current atomic.Pointer[emotion.State]
	commits atomic.Uint64

	eventMu sync.Mutex
	events  []Event
}

// New creates an engine, loading the persisted snapshot if one exists.
// A load failure is non-fatal: the documented defaults apply and the
// failure is logged. store may be nil to run without persistence.
func New(store SnapshotStore, clk clock.Clock, rng entropy.Source) *Engine {
	e := &Engine{
		store:       store,
		clk:         clk,
		rng:         rng,
		cmds:        make(chan command, cmdBuffer),
		stop:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		persistCh:   make(chan emotion.State, 1),
		persistDone: make(chan struct{}),
	}

	st := emotion.DefaultState()
	if store != nil {
		loaded, ok, err := store.LoadSnapshot()
		switch {
		case err != nil:
			slog.Warn("snapshot load failed, starting from defaults", "error", err)
		case ok:
			st = loaded
			slog.Info("emotion state restored",
				"valence", fmt.Sprintf("%.3f", st.Valence),
				"arousal", fmt.Sprintf("%.3f", st.Arousal),
				"mood", st.DominantMood(),
			)
		default:
			slog.Info("no saved emotion state, starting from defaults")
		}
	}
	e.current.Store(&st)
	return e
}

// Start launches the command loop, the persistence writer, and the three
// periodic processes. The day-cycle modulation is applied once immediately.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		go e.loop()
		go e.persistLoop()
		e.submitDayCycle()
	})
}

// Stop halts the loop, flushes the persistence writer, and returns once
// both goroutines have exited.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
		<-e.loopDone
		close(e.persistCh)
		<-e.persistDone
	})
}

func (e *Engine) loop() {
	defer close(e.loopDone)

	decayT := e.clk.NewTicker(decayInterval)
	defer decayT.Stop()
	boredomT := e.clk.NewTicker(boredomInterval)
	defer boredomT.Stop()
	dayT := e.clk.NewTicker(dayCycleInterval)
	defer dayT.Stop()

	for {
		select {
		case <-e.stop:
			return
		case cmd := <-e.cmds:
			e.apply(cmd)
		case <-decayT.C():
			e.apply(command{source: "decay", fn: applyBaselineDecay})
		case <-boredomT.C():
			e.apply(command{source: "boredom_growth", fn: applyBoredomGrowth})
		case <-dayT.C():
			// Applied inline: the loop must never enqueue onto the
			// channel it alone drains.
			hour := e.clk.Now().Hour()
			e.apply(command{source: "day_cycle", fn: func(s *emotion.State) {
				applyDayCycle(s, hour)
			}})
		}
	}
}

// apply runs one command against a copy of the current state, then commits
// the copy atomically. Readers see either the old or the new state, never
// a partial update.
func (e *Engine) apply(cmd command) {
	st := *e.current.Load()
	cmd.fn(&st)

	snap := st
	e.current.Store(&snap)
	e.commits.Add(1)
	e.recordEvent(cmd.source, cmd.detail, snap.DominantMood())
	e.queuePersist(snap)
}

// do enqueues a mutation. Callers block no longer than the enqueue itself;
// after Stop the command is discarded.
func (e *Engine) do(source, detail string, fn func(*emotion.State)) {
	select {
	case e.cmds <- command{source: source, detail: detail, fn: fn}:
	case <-e.stop:
	}
}

func (e *Engine) submitDayCycle() {
	hour := e.clk.Now().Hour()
	e.do("day_cycle", "", func(s *emotion.State) {
		applyDayCycle(s, hour)
	})
}

// queuePersist hands the committed snapshot to the writer, latest-wins.
// A slow or failing store coalesces writes; it never stalls the loop.
func (e *Engine) queuePersist(st emotion.State) {
	if e.store == nil {
		return
	}
	for {
		select {
		case e.persistCh <- st:
			return
		default:
		}
		select {
		case <-e.persistCh:
		default:
		}
	}
}

func (e *Engine) persistLoop() {
	defer close(e.persistDone)
	for st := range e.persistCh {
		if err := e.store.SaveSnapshot(st); err != nil {
			slog.Warn("snapshot save failed, in-memory state remains authoritative", "error", err)
		}
	}
}

func (e *Engine) recordEvent(source, detail string, mood emotion.Mood) {
	e.eventMu.Lock()
	e.events = append(e.events, Event{Time: e.clk.Now(), Source: source, Detail: detail, Mood: mood})
	if len(e.events) > maxEvents {
		e.events = e.events[len(e.events)-maxEvents:]
	}
	e.eventMu.Unlock()
}

// Snapshot returns the most recently committed state.
func (e *Engine) Snapshot() emotion.State {
	return *e.current.Load()
}

// Commits returns the number of committed mutations since start.
func (e *Engine) Commits() uint64 {
	return e.commits.Load()
}

// Events returns a copy of the recent committed-event log, oldest first.
func (e *Engine) Events() []Event {
	e.eventMu.Lock()
	defer e.eventMu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// SelectBehavior draws a behavior from the current state.
func (e *Engine) SelectBehavior() emotion.Behavior {
	return emotion.SelectBehavior(e.Snapshot(), e.rng)
}

// ── Event handlers ───────────────────────────────────────────────────

// OnFaceDetected reacts to a face-tracking sample. proximity is clamped to
// 0..1; offset is the horizontal gaze offset, carried for the event log.
// Non-finite input is rejected before it reaches the mutation path.
func (e *Engine) OnFaceDetected(proximity, offset float64) {
	if !finite(proximity) || !finite(offset) {
		slog.Debug("rejecting non-finite face sample", "proximity", proximity, "offset", offset)
		return
	}
	p := clamp01(proximity)
	e.do("face_detected", fmt.Sprintf("proximity=%.2f", p), func(s *emotion.State) {
		s.AdjustArousal(p * 0.08)
		s.AdjustValence(0.04)
		s.AdjustBoredom(-0.15)
		s.AdjustAttachment(0.005)
	})
}

// OnFaceLost reacts to the tracked face leaving the frame.
func (e *Engine) OnFaceLost() {
	e.do("face_lost", "", func(s *emotion.State) {
		s.AdjustArousal(-0.05)
		s.AdjustBoredom(0.05)
	})
}

// OnSpeechSentiment applies a bounded sentiment score in [-1, 1].
func (e *Engine) OnSpeechSentiment(score float64) {
	if !finite(score) {
		slog.Debug("rejecting non-finite sentiment score")
		return
	}
	sc := clampSigned(score)
	e.do("sentiment", fmt.Sprintf("score=%.2f", sc), func(s *emotion.State) {
		s.AdjustValence(sc * 0.15)
		if sc > 0 {
			s.AdjustEnergy(sc * 0.05)
			s.AdjustArousal(sc * 0.08)
		}
	})
}

// OnInteraction records a generic interaction from the dialogue controller.
func (e *Engine) OnInteraction() {
	e.do("interaction", "", func(s *emotion.State) {
		s.AdjustBoredom(-0.3)
		s.AdjustArousal(0.1)
		s.AdjustAttachment(0.01)
	})
}

// OnPositiveOutcome records a successful exchange.
func (e *Engine) OnPositiveOutcome() {
	e.do("positive_outcome", "", func(s *emotion.State) {
		s.AdjustValence(0.2)
		s.AdjustArousal(0.1)
		s.AdjustAttachment(0.02)
	})
}

// OnNegativeOutcome records a failed exchange.
func (e *Engine) OnNegativeOutcome() {
	e.do("negative_outcome", "", func(s *emotion.State) {
		s.AdjustValence(-0.1)
		s.AdjustArousal(0.05)
	})
}

// OnPlayModeEvent applies the fixed delta table for one play-mode kind.
// Unknown kinds are dropped.
func (e *Engine) OnPlayModeEvent(kind PlayMode) {
	if kind >= numPlayModes {
		slog.Debug("dropping unknown play mode", "kind", uint8(kind))
		return
	}
	e.do("play_mode", kind.String(), func(s *emotion.State) {
		kind.apply(s)
	})
}

// OnTouchEvent applies the affective response for one classified gesture.
func (e *Engine) OnTouchEvent(ev gesture.TouchEvent) {
	dur := ev.Duration
	if !finite(dur) || dur < 0 {
		dur = 0
	}
	e.do("touch", ev.Type.String(), func(s *emotion.State) {
		switch ev.Type {
		case gesture.TouchLightTap:
			s.AdjustValence(0.08)
			s.AdjustArousal(0.05)
			s.AdjustBoredom(-0.15)
			s.AdjustAttachment(0.005)
		case gesture.TouchHold:
			s.AdjustArousal(0.1)
			s.AdjustBoredom(-0.2)
		case gesture.TouchLongPress:
			s.AdjustValence(-dur * 0.3)
			s.AdjustArousal(dur * 0.2)
			s.AdjustBoredom(-0.1)
		case gesture.TouchOverHold:
			// Unlike longPress, the overHold response is explicitly capped
			// so a very long pin never swings the axes past -0.5/+0.4.
			s.AdjustValence(-math.Min(dur*0.3, 0.5))
			s.AdjustArousal(math.Min(dur*0.2, 0.4))
			s.AdjustBoredom(-0.1)
		case gesture.TouchPetting:
			s.AdjustValence(0.2)
			s.AdjustArousal(-0.05)
			s.AdjustAttachment(0.03)
			s.AdjustBoredom(-0.1)
			s.AdjustEnergy(0.05)
		}
	})
}

// OnDanceEnergyDecay drains stamina while dance mode runs.
func (e *Engine) OnDanceEnergyDecay() {
	e.do("dance_decay", "", func(s *emotion.State) {
		s.AdjustEnergy(-0.01)
	})
}

// Reset atomically replaces the entire state with the documented defaults.
// Observers never see a partially reset state.
func (e *Engine) Reset() {
	e.do("reset", "", func(s *emotion.State) {
		*s = emotion.DefaultState()
	})
}

// ── Periodic processes ───────────────────────────────────────────────

// applyBaselineDecay steps valence and arousal toward their baselines.
func applyBaselineDecay(s *emotion.State) {
	s.Valence = stepToward(s.Valence, baselineValence)
	s.Arousal = stepToward(s.Arousal, baselineArousal)
}

// stepToward moves cur a fixed step toward target, freezing inside the
// tolerance band so converged axes stop ticking instead of oscillating.
func stepToward(cur, target float64) float64 {
	if math.Abs(cur-target) <= decayTolerance {
		return cur
	}
	if cur > target {
		return cur - decayStep
	}
	return cur + decayStep
}

// applyBoredomGrowth builds inactivity pressure and drains stamina; high
// boredom also dampens arousal.
func applyBoredomGrowth(s *emotion.State) {
	s.AdjustBoredom(0.04)
	s.AdjustEnergy(-0.01)
	if s.Boredom > 0.5 {
		s.AdjustArousal(-0.02)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
