package registry

import (
	"reflect"
	"sync"

	"github.com/zeusync/entitykit/pkg/sequence"
)

// slot is one attached component together with its type identity.
type slot struct {
	id        ComponentID
	typ       reflect.Type
	component Component
}

// record holds the components of a single entity in attach order, with a
// ComponentID index for exact-type lookup.
type record struct {
	slots []slot
	index map[ComponentID]int // ComponentID -> position in slots
}

// Store maps entity names to their attached components. Each entity holds at
// most one component per concrete type. A Store is owned by exactly one
// Registry, which validates entity membership before delegating writes.
//
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

// NewStore creates an empty component store.
func NewStore() *Store {
	return &Store{records: make(map[string]*record)}
}

// Attach stores the component under its concrete type for the named entity.
// When a component of that exact type is already present it is replaced in
// place, keeping its original attach position, and Attach returns false.
// Attach returns true only when a new slot was created.
func (s *Store) Attach(entity string, c Component) bool {
	if c == nil {
		return false
	}
	t := reflect.TypeOf(c)
	id := IDOf(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[entity]
	if rec == nil {
		rec = &record{index: make(map[ComponentID]int)}
		s.records[entity] = rec
	}
	if pos, ok := rec.index[id]; ok {
		rec.slots[pos].component = c
		return false
	}
	rec.index[id] = len(rec.slots)
	rec.slots = append(rec.slots, slot{id: id, typ: t, component: c})
	return true
}

// Detach removes the slot for the component's concrete type, but only when
// the stored instance matches the given one. Returns false when the entity is
// unknown, no slot of that type exists, or a different instance occupies it.
func (s *Store) Detach(entity string, c Component) bool {
	if c == nil {
		return false
	}
	id := IDOf(reflect.TypeOf(c))

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[entity]
	if rec == nil {
		return false
	}
	pos, ok := rec.index[id]
	if !ok || !sameComponent(rec.slots[pos].component, c) {
		return false
	}
	rec.slots = append(rec.slots[:pos], rec.slots[pos+1:]...)
	delete(rec.index, id)
	for i := pos; i < len(rec.slots); i++ {
		rec.index[rec.slots[i].id] = i
	}
	if len(rec.slots) == 0 {
		delete(s.records, entity)
	}
	return true
}

// Get returns the component stored under the exact concrete type t.
func (s *Store) Get(entity string, t reflect.Type) (Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.records[entity]
	if rec == nil {
		return nil, false
	}
	pos, ok := rec.index[IDOf(t)]
	if !ok {
		return nil, false
	}
	return rec.slots[pos].component, true
}

// GetAssignable returns the first component, in attach order, whose concrete
// type is assignable to t. This covers t itself as well as any interface it
// names, making the lookup subtype-aware. The first match wins.
func (s *Store) GetAssignable(entity string, t reflect.Type) (Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.records[entity]
	if rec == nil {
		return nil, false
	}
	for _, sl := range rec.slots {
		if sl.typ.AssignableTo(t) {
			return sl.component, true
		}
	}
	return nil, false
}

// Components returns a restartable iterator over the entity's components in
// attach order. Unknown entities yield an empty iterator, never nil. The
// iterator is backed by a snapshot taken at call time.
func (s *Store) Components(entity string) *sequence.Iterator[Component] {
	s.mu.RLock()
	rec := s.records[entity]
	var snapshot []Component
	if rec != nil {
		snapshot = make([]Component, len(rec.slots))
		for i, sl := range rec.slots {
			snapshot[i] = sl.component
		}
	}
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return sequence.Empty[Component]()
	}
	return sequence.From(snapshot)
}

// Len returns the number of components attached to the entity.
func (s *Store) Len(entity string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec := s.records[entity]; rec != nil {
		return len(rec.slots)
	}
	return 0
}

// purge releases all components of the entity.
func (s *Store) purge(entity string) {
	s.mu.Lock()
	delete(s.records, entity)
	s.mu.Unlock()
}
