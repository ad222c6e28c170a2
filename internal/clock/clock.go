// Package clock abstracts wall-clock time so the engine's periodic
// processes and the gesture classifier's timing can run against a
// manually advanced clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides current time, repeating tickers, and one-shot timers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

// Ticker delivers repeated time signals on C.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return &realTimer{t: time.AfterFunc(d, f)}
}

type realTicker struct{ t *time.Ticker }

func (rt *realTicker) C() <-chan time.Time { return rt.t.C }
func (rt *realTicker) Stop()               { rt.t.Stop() }

type realTimer struct{ t *time.Timer }

func (rt *realTimer) Stop() bool { return rt.t.Stop() }

// Manual is an advanceable clock for tests and headless drivers.
// Tickers fire once per elapsed interval during Advance, in time order.
// Ticker channels are buffered (128) so a large Advance does not drop
// ticks before the consumer catches up.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []*manualTimer
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// NewTicker registers a repeating ticker firing every d of advanced time.
func (m *Manual) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{
		clock:    m,
		interval: d,
		next:     m.now.Add(d),
		ch:       make(chan time.Time, 128),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// AfterFunc registers f to run once d of advanced time has passed.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, at: m.now.Add(d), f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward, firing due tickers and timers in
// chronological order. Timer callbacks run on the caller's goroutine
// without the clock lock held.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		tk, tm, at := m.nextDueLocked(target)
		if tk == nil && tm == nil {
			break
		}
		m.now = at
		if tk != nil {
			select {
			case tk.ch <- at:
			default:
				// Consumer is far behind; drop like time.Ticker does.
			}
			tk.next = tk.next.Add(tk.interval)
			continue
		}
		m.removeTimerLocked(tm)
		m.mu.Unlock()
		tm.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// nextDueLocked returns the earliest ticker or timer due at or before target.
func (m *Manual) nextDueLocked(target time.Time) (*manualTicker, *manualTimer, time.Time) {
	var bestTicker *manualTicker
	var bestTimer *manualTimer
	var at time.Time

	for _, t := range m.tickers {
		if t.stopped || t.next.After(target) {
			continue
		}
		if bestTicker == nil || t.next.Before(at) {
			bestTicker, at = t, t.next
		}
	}
	sort.SliceStable(m.timers, func(i, j int) bool { return m.timers[i].at.Before(m.timers[j].at) })
	for _, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if (bestTicker == nil && bestTimer == nil) || t.at.Before(at) {
			bestTicker, bestTimer, at = nil, t, t.at
		}
		break
	}
	return bestTicker, bestTimer, at
}

func (m *Manual) removeTimerLocked(tm *manualTimer) {
	for i, t := range m.timers {
		if t == tm {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

type manualTicker struct {
	clock    *Manual
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

type manualTimer struct {
	clock *Manual
	at    time.Time
	f     func()
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}
