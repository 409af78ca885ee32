// Package definition implements named, inheritable component bundles.
// A definition maps a name to an ordered set of component types; making a
// definition instantiates one component of each resolved type and attaches
// them to a new (or caller-supplied) entity. Inheritance is resolved lazily
// at make time, so redefining a parent changes the behavior of its children.
package definition

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeusync/entitykit/internal/core/observability/log"
	"github.com/zeusync/entitykit/pkg/registry"
)

var componentType = reflect.TypeOf((*registry.Component)(nil)).Elem()

// definition is one catalog entry: its own component types plus an optional
// parent it inherits from. Only the parent name is stored; the parent's types
// are looked up on every Resolve.
type definition struct {
	parent string
	types  []reflect.Type
}

// Catalog names reusable component bundles and instantiates them into
// entities. All methods are safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]definition
	log  *log.Logger
}

// Option configures a Catalog at construction time.
type Option func(*Catalog)

// WithLogger injects the logger used for catalog events.
func WithLogger(l *log.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// NewCatalog creates an empty definition catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		defs: make(map[string]definition),
		log:  log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Define creates or overwrites a definition. Nil entries, types that do not
// implement registry.Component, and duplicates are filtered out, preserving
// order. When nothing valid remains the catalog is left unchanged and Define
// returns false.
func (c *Catalog) Define(name string, types ...reflect.Type) bool {
	return c.put(name, "", types)
}

// Extend is Define with an inheritance reference: at make time the parent's
// resolved types come first, then this definition's own types, deduplicated.
// The parent is resolved lazily, so it may be defined or redefined later.
func (c *Catalog) Extend(name, parent string, types ...reflect.Type) bool {
	return c.put(name, parent, types)
}

func (c *Catalog) put(name, parent string, types []reflect.Type) bool {
	valid := filterTypes(types)
	if len(valid) == 0 {
		c.log.Debug("definition rejected, no valid component types",
			zap.String("definition", name))
		return false
	}

	c.mu.Lock()
	c.defs[name] = definition{parent: parent, types: valid}
	c.mu.Unlock()

	c.log.Debug("definition stored",
		zap.String("definition", name),
		zap.String("parent", parent),
		zap.Int("types", len(valid)))
	return true
}

// Undefine removes a definition. Entities already made from it are not
// affected. Returns false when the name is unknown.
func (c *Catalog) Undefine(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[name]; !ok {
		return false
	}
	delete(c.defs, name)
	return true
}

// Contains reports whether a definition with the given name exists.
func (c *Catalog) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[name]
	return ok
}

// Resolve flattens the definition's inheritance chain into the ordered,
// deduplicated list of component types to instantiate: parent types first,
// then own types. A parent that is (currently) undefined contributes nothing.
// Cycles in the inheritance graph fail with ErrCyclicInheritance.
func (c *Catalog) Resolve(name string) ([]reflect.Type, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.defs[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefinition, name)
	}

	var (
		out     []reflect.Type
		seen    = make(map[reflect.Type]struct{})
		visited = make(map[string]struct{})
	)
	var walk func(n string) error
	walk = func(n string) error {
		if _, ok := visited[n]; ok {
			return fmt.Errorf("%w: %q", ErrCyclicInheritance, n)
		}
		visited[n] = struct{}{}
		def, ok := c.defs[n]
		if !ok {
			return nil // dangling parent, contributes nothing
		}
		if def.parent != "" {
			if err := walk(def.parent); err != nil {
				return err
			}
		}
		for _, t := range def.types {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
		return nil
	}
	if err := walk(name); err != nil {
		return nil, err
	}
	return out, nil
}

// Make instantiates the named definition into the active registry: it creates
// an entity with a generated unique name and attaches one default-constructed
// component per resolved type, in resolution order.
func (c *Catalog) Make(name string) (registry.Entity, error) {
	types, err := c.Resolve(name)
	if err != nil {
		return registry.Entity{}, err
	}
	e := registry.Current().Create(name + "-" + uuid.NewString())
	return c.attachAll(name, e, types), nil
}

// MakeInto attaches the named definition's components onto a caller-supplied,
// already-registered entity instead of creating a new one.
func (c *Catalog) MakeInto(name string, e registry.Entity) (registry.Entity, error) {
	if e.Owner() == nil || !e.Owner().Contains(e) {
		return registry.Entity{}, fmt.Errorf("%w: %q", ErrNotRegistered, e.Name())
	}
	types, err := c.Resolve(name)
	if err != nil {
		return registry.Entity{}, err
	}
	return c.attachAll(name, e, types), nil
}

func (c *Catalog) attachAll(name string, e registry.Entity, types []reflect.Type) registry.Entity {
	owner := e.Owner()
	for _, t := range types {
		owner.Attach(e, instantiate(t))
	}
	c.log.Debug("definition instantiated",
		zap.String("definition", name),
		zap.String("entity", e.Name()),
		zap.Int("components", len(types)))
	return e
}

// instantiate default-constructs a component of the given type. Pointer types
// get a freshly allocated zero value; value types get their zero value.
func instantiate(t reflect.Type) registry.Component {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(registry.Component)
	}
	return reflect.Zero(t).Interface().(registry.Component)
}

// filterTypes drops nil entries, non-component types and duplicates while
// preserving order.
func filterTypes(types []reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := make(map[reflect.Type]struct{}, len(types))
	for _, t := range types {
		if t == nil || !t.Implements(componentType) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
