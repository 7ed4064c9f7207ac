// Package eventbus is an in-memory publish/subscribe bus for clock lifecycle
// events. Delivery is asynchronous and best-effort: each subscriber has a
// buffered channel, and events are dropped rather than blocking a publisher.
package eventbus

import (
	"sync"
	"time"

	"github.com/mleonard/chessclock/event"
	"github.com/mleonard/chessclock/internal/logger"
)

// Publisher defines the interface for publishing events.
// This interface enables testing with mock implementations.
type Publisher interface {
	Publish(ev event.Event)
	Subscribe(eventType event.Type, handler func(event.Event))
}

// Ensure Bus implements Publisher
var _ Publisher = (*Bus)(nil)

// Bus fans events out to per-type subscribers.
type Bus struct {
	subscribers map[event.Type][]chan event.Event
	mu          sync.RWMutex
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[event.Type][]chan event.Event),
		stopChan:    make(chan struct{}),
	}
}

// Publish delivers ev to every subscriber of its type. Subscribers that
// cannot keep up lose events instead of stalling the clock driver.
func (b *Bus) Publish(ev event.Event) {
	logger.Debugf("EventBus: publishing %s (session: %s, player: %d)", ev.Type, ev.SessionID, ev.Player)

	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if subscribers, ok := b.subscribers[ev.Type]; ok {
		for _, ch := range subscribers {
			select {
			case ch <- ev:
			default:
				// Non-blocking, drop if buffer full to prevent blocking the publisher
			}
		}
	}
}

// Subscribe registers handler for events of the given type. The handler runs
// on its own goroutine until Shutdown.
func (b *Bus) Subscribe(eventType event.Type, handler func(event.Event)) {
	ch := make(chan event.Event, 100)

	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return // Channel closed
				}
				handler(ev)
			case <-b.stopChan:
				return // Shutdown signal received
			}
		}
	}()
}

// Shutdown stops all subscriber goroutines and waits for them to finish
func (b *Bus) Shutdown() {
	close(b.stopChan)
	b.wg.Wait()
	logger.Debugf("EventBus shutdown complete")
}
