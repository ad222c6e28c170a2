package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualAdvanceFiresTickersInOrder(t *testing.T) {
	m := NewManual(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	fast := m.NewTicker(time.Second)
	slow := m.NewTicker(3 * time.Second)

	m.Advance(3 * time.Second)

	require.Len(t, fast.C(), 3)
	require.Len(t, slow.C(), 1)

	first := <-fast.C()
	assert.Equal(t, m.Now().Add(-2*time.Second), first)
}

func TestManualAfterFunc(t *testing.T) {
	m := NewManual(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	fired := 0
	m.AfterFunc(500*time.Millisecond, func() { fired++ })

	m.Advance(499 * time.Millisecond)
	assert.Zero(t, fired)
	m.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	m.Advance(time.Second)
	assert.Equal(t, 1, fired, "one-shot timer fired twice")
}

func TestManualTimerStop(t *testing.T) {
	m := NewManual(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop should report already stopped")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualStoppedTickerStaysQuiet(t *testing.T) {
	m := NewManual(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	tk := m.NewTicker(time.Second)
	tk.Stop()

	m.Advance(5 * time.Second)
	assert.Empty(t, tk.C())
}

func TestManualTimerOrderingAgainstTickers(t *testing.T) {
	m := NewManual(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	tk := m.NewTicker(time.Second)

	var sawTicks int
	m.AfterFunc(1500*time.Millisecond, func() {
		sawTicks = len(tk.C())
	})

	m.Advance(2 * time.Second)
	assert.Equal(t, 1, sawTicks, "timer at 1.5s should run after exactly one tick")
	assert.Len(t, tk.C(), 2)
}

func TestRealClockBasics(t *testing.T) {
	c := Real()
	before := time.Now()
	now := c.Now()
	assert.False(t, now.Before(before))

	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}
