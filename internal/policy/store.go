package policy

import (
	"context"
	"sync"
)

// Store is the durable persistence interface for the triage policy.
// Load returns ok=false when nothing has been saved yet; callers fall
// back to Defaults rather than treating that as an error.
type Store interface {
	Load(ctx context.Context) (Policy, bool, error)
	Save(ctx context.Context, p Policy) error
}

// Bus rebroadcasts policy changes in-process. Every mounted consumer of
// the same policy subscribes once instead of re-reading durable storage
// each tick.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Policy
	next int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Policy)}
}

// Subscribe registers a listener. The returned cancel func must be called
// on unmount; after cancel the channel is closed.
func (b *Bus) Subscribe() (<-chan Policy, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Policy, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers p to every subscriber. A subscriber that has not
// drained its previous update gets the newest value instead; updates
// coalesce rather than queue.
func (b *Bus) Publish(p Policy) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- p:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- p
		}
	}
}
