package guard

import (
	"context"
	"sync"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// Broker is an in-process session event stream for single-node deployments
// and tests. The Redis-backed store provides the distributed equivalent.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]func(*domain.SessionEvent)
	nextID int
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(*domain.SessionEvent))}
}

// Publish delivers the event to every subscriber synchronously; delivery
// order across subscribers is not guaranteed.
func (b *Broker) Publish(_ context.Context, event *domain.SessionEvent) error {
	b.mu.Lock()
	fns := make([]func(*domain.SessionEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
	return nil
}

// Subscribe registers a callback and returns its unsubscribe function.
func (b *Broker) Subscribe(_ context.Context, fn func(*domain.SessionEvent)) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}, nil
}

// SubscriberCount reports how many listeners are registered.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
