package gesture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/companion/internal/clock"
)

// Phase is the classifier's FSM state.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseTouching
	PhasePetting
	PhaseReleasing
)

var phaseNames = [...]string{"idle", "touching", "petting", "releasing"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

const (
	// minDragSamples is how many drag samples must be buffered before the
	// velocity gate is evaluated at all.
	minDragSamples = 5

	// velocityWindow is the trailing sample count the gate averages over.
	velocityWindow = 6

	// pettingVelocityMax separates smooth petting drags from fast swipes,
	// in points per second.
	pettingVelocityMax = 800.0

	// Duration thresholds for release classification, in seconds.
	lightTapMax  = 0.2
	holdMax      = 0.6
	longPressMax = 1.2

	// tickInterval drives the ~20 Hz progressive-feedback stream.
	tickInterval = 50 * time.Millisecond

	// releaseDelay is the cosmetic pause in Releasing before returning to Idle.
	releaseDelay = 250 * time.Millisecond

	// DefaultScale converts normalized positions to points for the velocity
	// gate: one full screen span is treated as 1000 points.
	DefaultScale = 1000.0
)

// Classifier consumes pointer-down/move/up samples for a single active
// contact and emits exactly one TouchEvent per completed gesture — never
// zero, never more than one.
type Classifier struct {
	clk    clock.Clock
	broker *Broker
	scale  float64

	mu        sync.Mutex
	phase     Phase
	gestureID uuid.UUID
	start     time.Time
	lastPos   Point
	window    *sampleRing
	dragCount int
	velocity  float64
	tickStop  chan struct{}
	release   clock.Timer
}

// NewClassifier creates a classifier. scale converts normalized coordinates
// to points for the velocity gate; pass 0 for DefaultScale.
func NewClassifier(clk clock.Clock, scale float64) *Classifier {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Classifier{
		clk:    clk,
		broker: NewBroker(),
		scale:  scale,
		window: newSampleRing(velocityWindow),
	}
}

// SubscribeEvents returns a channel receiving every terminal TouchEvent.
func (c *Classifier) SubscribeEvents(buffer int) <-chan TouchEvent {
	return c.broker.SubscribeEvents(buffer)
}

// SubscribeTicks returns a channel receiving progressive duration ticks.
func (c *Classifier) SubscribeTicks(buffer int) <-chan Tick {
	return c.broker.SubscribeTicks(buffer)
}

// Phase returns the current FSM state.
func (c *Classifier) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Begin starts a new gesture on contact start. A contact arriving during
// the Releasing pause cuts the pause short and begins the next gesture.
// A contact while another is already active is ignored.
func (c *Classifier) Begin(s Sample) {
	c.mu.Lock()
	if c.phase == PhaseTouching || c.phase == PhasePetting {
		c.mu.Unlock()
		return
	}
	if c.release != nil {
		c.release.Stop()
		c.release = nil
	}

	c.phase = PhaseTouching
	c.gestureID = uuid.New()
	c.start = s.Time
	c.lastPos = s.Pos
	c.window.reset()
	c.dragCount = 0
	c.velocity = 0

	stop := make(chan struct{})
	c.tickStop = stop
	id := c.gestureID
	// The ticker is registered before Begin returns so no early ticks are
	// lost to goroutine scheduling.
	ticker := c.clk.NewTicker(tickInterval)
	c.mu.Unlock()

	go c.runTicks(id, stop, ticker)
}

// runTicks publishes elapsed-duration notifications until the gesture ends.
func (c *Classifier) runTicks(id uuid.UUID, stop chan struct{}, ticker clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			c.mu.Lock()
			if c.gestureID != id || (c.phase != PhaseTouching && c.phase != PhasePetting) {
				c.mu.Unlock()
				return
			}
			t := Tick{GestureID: id, Elapsed: now.Sub(c.start).Seconds(), Phase: c.phase}
			c.mu.Unlock()
			c.broker.publishTick(t)
		}
	}
}

// Move feeds a drag sample. Once enough samples are buffered, the trailing
// window velocity decides whether the contact is a smooth petting drag.
func (c *Classifier) Move(s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseTouching && c.phase != PhasePetting {
		return
	}

	c.lastPos = s.Pos
	c.window.push(s)
	c.dragCount++

	if c.dragCount < minDragSamples {
		return
	}
	c.velocity = c.window.pathVelocity(c.scale)
	if c.phase == PhaseTouching && c.velocity < pettingVelocityMax {
		c.phase = PhasePetting
	}
}

// End completes the gesture on contact release: classification happens at
// this instant, the single TouchEvent is emitted, and after the cosmetic
// Releasing pause the classifier returns to Idle.
func (c *Classifier) End(s Sample) {
	c.mu.Lock()
	if c.phase != PhaseTouching && c.phase != PhasePetting {
		c.mu.Unlock()
		return
	}

	duration := s.Time.Sub(c.start).Seconds()
	if duration < 0 {
		duration = 0
	}
	ev := TouchEvent{
		ID:       c.gestureID,
		Duration: duration,
		Location: s.Pos,
	}
	if c.phase == PhasePetting {
		ev.Type = TouchPetting
		ev.Velocity = c.velocity
	} else {
		ev.Type = classifyDuration(duration)
	}

	c.phase = PhaseReleasing
	c.stopTicksLocked()
	id := c.gestureID
	c.release = c.clk.AfterFunc(releaseDelay, func() {
		c.mu.Lock()
		if c.phase == PhaseReleasing && c.gestureID == id {
			c.phase = PhaseIdle
		}
		c.mu.Unlock()
	})
	c.mu.Unlock()

	c.broker.publishEvent(ev)
}

// Cancel aborts the active gesture. If it had already reached Petting, a
// synthetic petting event carrying the elapsed duration and last window
// velocity is still emitted so affective effects are never silently lost.
// A gesture still in Touching produces no event.
func (c *Classifier) Cancel() {
	c.mu.Lock()
	if c.phase != PhaseTouching && c.phase != PhasePetting {
		c.mu.Unlock()
		return
	}

	wasPetting := c.phase == PhasePetting
	duration := c.clk.Now().Sub(c.start).Seconds()
	if duration < 0 {
		duration = 0
	}
	ev := TouchEvent{
		ID:       c.gestureID,
		Type:     TouchPetting,
		Duration: duration,
		Velocity: c.velocity,
		Location: c.lastPos,
	}

	c.phase = PhaseIdle
	c.stopTicksLocked()
	c.mu.Unlock()

	if wasPetting {
		c.broker.publishEvent(ev)
	}
}

func (c *Classifier) stopTicksLocked() {
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
}

// classifyDuration maps a non-petting gesture's total duration to its type.
func classifyDuration(d float64) TouchType {
	switch {
	case d <= lightTapMax:
		return TouchLightTap
	case d <= holdMax:
		return TouchHold
	case d <= longPressMax:
		return TouchLongPress
	default:
		return TouchOverHold
	}
}
