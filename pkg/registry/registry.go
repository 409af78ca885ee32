// Package registry implements a runtime entity-component registry: opaque
// named entities with dynamically attached typed components, supporting
// exact and subtype-aware lookup, multiple isolated registry instances, and a
// process-wide swappable active registry.
package registry

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/zeusync/entitykit/internal/core/observability/log"
	"github.com/zeusync/entitykit/pkg/sequence"
)

// Registry owns a set of live entities and their components. Each registry is
// fully isolated: an entity name only has meaning within the registry that
// issued it. All methods are safe for concurrent use; mutations are serialized
// against reads through a single write lock per registry.
type Registry struct {
	mu    sync.RWMutex
	name  string
	order []string          // entity names in creation order
	live  map[string]Entity // name -> live handle
	store *Store
	log   *log.Logger
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLogger injects the logger used for lifecycle events. Defaults to a nop
// logger so embedding the registry never forces log output.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithName labels the registry in log output.
func WithName(name string) Option {
	return func(r *Registry) { r.name = name }
}

// New creates a fresh, empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		live:  make(map[string]Entity),
		store: NewStore(),
		log:   log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.name != "" {
		r.log = r.log.With(zap.String("registry", r.name))
	}
	return r
}

// Name returns the registry's label, if any.
func (r *Registry) Name() string {
	return r.name
}

// Create registers an entity under the given name and returns its handle.
// Creation is idempotent: creating an existing name returns a handle to the
// already-live entity instead of a duplicate.
func (r *Registry) Create(name string) Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.live[name]; ok {
		return e
	}
	e := Entity{name: name, owner: r}
	r.live[name] = e
	r.order = append(r.order, name)
	r.log.Debug("entity created", zap.String("entity", name))
	return e
}

// Contains reports whether the entity is a live member of this registry.
// Membership is by name; handles issued by other registries never match.
func (r *Registry) Contains(e Entity) bool {
	if e.owner != r {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.live[e.name]
	return ok
}

// Find returns a live handle for the named entity, or false when no such
// entity is registered.
func (r *Registry) Find(name string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.live[name]
	return e, ok
}

// Drop removes the named entity and releases all its components. The live-set
// removal and the component purge happen under the registry write lock, so
// readers never observe a half-dropped entity. Returns false when the name is
// not registered.
func (r *Registry) Drop(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[name]; !ok {
		return false
	}
	delete(r.live, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.store.purge(name)
	r.log.Debug("entity dropped", zap.String("entity", name))
	return true
}

// DropEntity removes the entity behind the handle. Handles from other
// registries are rejected.
func (r *Registry) DropEntity(e Entity) bool {
	if e.owner != r {
		return false
	}
	return r.Drop(e.name)
}

// Entities returns a snapshot of all live entities in creation order.
func (r *Registry) Entities() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.live[name])
	}
	return out
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

// Attach stores the component on the entity, keyed by its concrete type.
// Returns false when the entity is not live in this registry, or when an
// existing component of the same type was replaced.
func (r *Registry) Attach(e Entity, c Component) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e.owner != r {
		return false
	}
	if _, ok := r.live[e.name]; !ok {
		return false
	}
	return r.store.Attach(e.name, c)
}

// Detach removes the component from the entity when the stored instance of
// its concrete type matches. Returns false otherwise.
func (r *Registry) Detach(e Entity, c Component) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e.owner != r {
		return false
	}
	return r.store.Detach(e.name, c)
}

// Component returns the entity's component of the exact concrete type t.
func (r *Registry) Component(e Entity, t reflect.Type) (Component, bool) {
	if e.owner != r {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Get(e.name, t)
}

// ComponentAssignable returns the first component, in attach order, whose
// type is assignable to t.
func (r *Registry) ComponentAssignable(e Entity, t reflect.Type) (Component, bool) {
	if e.owner != r {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetAssignable(e.name, t)
}

// Components returns a restartable iterator over the entity's components in
// attach order. Unknown, dropped or foreign entities yield an empty iterator.
func (r *Registry) Components(e Entity) *sequence.Iterator[Component] {
	if e.owner != r {
		return sequence.Empty[Component]()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Components(e.name)
}

// Lookup retrieves the entity's component whose concrete type is exactly T.
func Lookup[T Component](r *Registry, e Entity) (T, bool) {
	var zero T
	c, ok := r.Component(e, TypeFor[T]())
	if !ok {
		return zero, false
	}
	return c.(T), true
}

// LookupDerived retrieves the first component, in attach order, whose type is
// T or assignable to T. With an interface type argument this is a query by
// capability; ties between several matching components are broken by attach
// order.
func LookupDerived[T Component](r *Registry, e Entity) (T, bool) {
	var zero T
	c, ok := r.ComponentAssignable(e, TypeFor[T]())
	if !ok {
		return zero, false
	}
	return c.(T), true
}
