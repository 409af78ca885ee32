// Package broadcast delivers a typed message to every component of every
// entity in a registry.
//
// Key characteristics:
//   - Synchronous delivery in the caller goroutine, entities in registration
//     order, components in attach order.
//   - Snapshot-then-iterate: the full entity/component set is captured before
//     the first notification, so handlers that attach or detach components
//     mid-broadcast never cause inconsistent visits.
//   - Isolate-and-continue: a failing component handler never aborts delivery
//     to the rest; failures are joined and returned after the sweep.
//   - Optional observability: observers see each broadcast and its outcome.
package broadcast

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zeusync/entitykit/internal/core/observability/log"
	"github.com/zeusync/entitykit/pkg/registry"
)

// Observer receives hooks around each broadcast.
type Observer interface {
	// OnBroadcast fires before delivery, with the snapshot size.
	OnBroadcast(message string, entities int)
	// OnDelivered fires after the sweep with the notification count, the
	// joined failure (nil when clean) and the elapsed microseconds.
	OnDelivered(message string, notified int, err error, micros int64)
}

// Metrics aggregates broadcast counters.
type Metrics struct {
	Broadcasts uint64
	Notified   uint64
	Failures   uint64
}

// Broadcaster fans messages out across a registry. The zero configuration is
// usable; observers and a logger are optional. Safe for concurrent use.
type Broadcaster struct {
	mu        sync.RWMutex
	observers map[Observer]struct{}
	metrics   Metrics
	log       *log.Logger
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLogger injects the logger used to report per-component notify failures.
func WithLogger(l *log.Logger) Option {
	return func(b *Broadcaster) { b.log = l }
}

// New creates a Broadcaster.
func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		observers: make(map[Observer]struct{}),
		log:       log.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddObserver registers an observer for subsequent broadcasts.
func (b *Broadcaster) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

// RemoveObserver unregisters an observer.
func (b *Broadcaster) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

// GetMetrics returns a copy of the accumulated counters.
func (b *Broadcaster) GetMetrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// delivery is one (entity, components) pair captured in the snapshot.
type delivery struct {
	entity     registry.Entity
	components []registry.Component
}

// Broadcast notifies every component of every entity in the registry with
// (message, payload), exactly once per pair. A nil registry is a no-op, not
// an error. Handler failures are isolated: they are logged, collected and
// returned joined after every pair has been visited.
func (b *Broadcaster) Broadcast(r *registry.Registry, message string, payload any) error {
	if r == nil {
		return nil
	}
	start := time.Now()

	// Snapshot the whole fan-out set before notifying anything. Components
	// attached or detached by a handler are picked up by the next broadcast,
	// never by this one.
	entities := r.Entities()
	deliveries := make([]delivery, 0, len(entities))
	for _, e := range entities {
		deliveries = append(deliveries, delivery{
			entity:     e,
			components: r.Components(e).Collect(),
		})
	}

	b.mu.RLock()
	observers := make([]Observer, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnBroadcast(message, len(deliveries))
	}

	notified := 0
	var errs []error
	for _, d := range deliveries {
		for _, c := range d.components {
			notified++
			if err := c.Notify(message, payload); err != nil {
				b.log.Warn("component notify failed",
					zap.String("message", message),
					zap.String("entity", d.entity.Name()),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("entity %q: %w", d.entity.Name(), err))
			}
		}
	}
	all := errors.Join(errs...)

	for _, obs := range observers {
		obs.OnDelivered(message, notified, all, time.Since(start).Microseconds())
	}

	b.mu.Lock()
	b.metrics.Broadcasts++
	b.metrics.Notified += uint64(notified)
	b.metrics.Failures += uint64(len(errs))
	b.mu.Unlock()

	return all
}

var defaultBroadcaster = New()

// Broadcast fans the message out through a shared default Broadcaster.
func Broadcast(r *registry.Registry, message string, payload any) error {
	return defaultBroadcaster.Broadcast(r, message, payload)
}
