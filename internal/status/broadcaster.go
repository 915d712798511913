// Package status implements the orchestrator's activity broadcast as an
// observer registry: any number of subscribers receive each published status
// synchronously, and a misbehaving subscriber cannot take down the publisher.
package status

import (
	"log/slog"
	"sync"

	"github.com/iris-assistant/iris/internal/schema"
)

// Observer receives published status values.
type Observer func(schema.Status)

// Broadcaster fans a status value out to all subscribed observers.
// Publish is synchronous and best-effort; a panicking observer is recovered
// and logged so the remaining observers still run.
type Broadcaster struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]Observer
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{observers: make(map[int]Observer)}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn Observer) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.observers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// Publish delivers st to every current observer.
func (b *Broadcaster) Publish(st schema.Status) {
	b.mu.Lock()
	snapshot := make([]Observer, 0, len(b.observers))
	for _, fn := range b.observers {
		snapshot = append(snapshot, fn)
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		deliver(fn, st)
	}
}

func deliver(fn Observer, st schema.Status) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("status observer panicked", "status", string(st), "err", r)
		}
	}()
	fn(st)
}
