package chat

import (
	"sync"
)

// UnreadBus broadcasts the session's unread message count to every mounted
// surface that displays it (navbar badge, bottom navigation, tab title).
// Subscribers get the count pushed in-process; no network round trip occurs
// on publish.
type UnreadBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(count int)
}

// NewUnreadBus creates an empty bus.
func NewUnreadBus() *UnreadBus {
	return &UnreadBus{subs: make(map[int]func(int))}
}

// Subscribe registers a callback for count updates and returns the matching
// unsubscribe function. Surfaces must unsubscribe when they unmount.
func (b *UnreadBus) Subscribe(fn func(count int)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish pushes a new count to every subscriber. Callbacks run outside the
// bus lock so a subscriber may subscribe or unsubscribe from within one.
func (b *UnreadBus) Publish(count int) {
	b.mu.Lock()
	snapshot := make([]func(int), 0, len(b.subs))
	for _, fn := range b.subs {
		snapshot = append(snapshot, fn)
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		fn(count)
	}
}
