// Package eventbus is the in-process publish/subscribe hub that decouples
// the real-time notifier from the views that refresh on its events.
package eventbus

import (
	"sync"

	"github.com/julianstephens/resdesk/internal/logger"
)

// Handler receives a published payload
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a topic-keyed observer dispatcher. Publish is synchronous and
// invokes handlers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscription
	next   uint64
	closed bool
}

// New creates an empty bus
func New() *Bus {
	return &Bus{topics: make(map[string][]subscription)}
}

// Subscribe registers handler for topic and returns its unsubscribe func.
// Calling the returned func more than once is harmless.
func (b *Bus) Subscribe(topic string, handler Handler) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.next++
	id := b.next
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		// Copy so snapshots held by an in-flight Publish stay intact
		next := make([]subscription, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.topics, topic)
		} else {
			b.topics[topic] = next
		}
		return
	}
}

// Publish delivers payload to every handler subscribed to topic at the
// moment of the call. Handlers added or removed during dispatch do not
// change the current pass.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	snapshot := b.topics[topic]
	b.mu.RUnlock()

	logger.Debug("Publishing event", "topic", topic, "subscribers", len(snapshot))

	for _, s := range snapshot {
		s.handler(payload)
	}
}

// Subscribers returns the number of handlers registered for topic
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close drops every subscription. Afterwards Publish is a no-op and
// Subscribe returns a no-op unsubscribe.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.topics = make(map[string][]subscription)
}
