package gesture

import (
	"log/slog"
	"sync"
)

// Broker fans gesture output out to independent subscribers. The visual
// feedback layer and the affective engine each get their own channels, so
// one consumer can never steal an event meant for another.
//
// Terminal TouchEvents are delivered into buffered per-subscriber channels;
// a subscriber that stops draining loses events (logged), it never stalls
// the classifier. Duration ticks are cosmetic and dropped silently on a
// full channel.
type Broker struct {
	mu        sync.Mutex
	tickSubs  []chan Tick
	eventSubs []chan TouchEvent
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{}
}

// SubscribeEvents registers a new terminal-event subscriber.
func (b *Broker) SubscribeEvents(buffer int) <-chan TouchEvent {
	ch := make(chan TouchEvent, buffer)
	b.mu.Lock()
	b.eventSubs = append(b.eventSubs, ch)
	b.mu.Unlock()
	return ch
}

// SubscribeTicks registers a new duration-tick subscriber.
func (b *Broker) SubscribeTicks(buffer int) <-chan Tick {
	ch := make(chan Tick, buffer)
	b.mu.Lock()
	b.tickSubs = append(b.tickSubs, ch)
	b.mu.Unlock()
	return ch
}

func (b *Broker) publishEvent(ev TouchEvent) {
	b.mu.Lock()
	subs := b.eventSubs
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("touch event dropped, subscriber not draining",
				"gesture_id", ev.ID, "type", ev.Type.String())
		}
	}
}

func (b *Broker) publishTick(t Tick) {
	b.mu.Lock()
	subs := b.tickSubs
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- t:
		default:
		}
	}
}
