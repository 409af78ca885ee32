package registry

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Component is the capability marker for anything attachable to an entity.
// Notify receives registry-wide broadcasts; components that do not care about
// a message should return nil.
type Component interface {
	Notify(message string, payload any) error
}

// ComponentID is a stable 64-bit identifier for a concrete component type,
// derived from the type's qualified name. It is stable across processes as
// long as the type's package path and name do not change.
type ComponentID uint64

var typeIDs sync.Map // reflect.Type -> ComponentID

// IDOf returns the ComponentID for a concrete component type token.
func IDOf(t reflect.Type) ComponentID {
	if id, ok := typeIDs.Load(t); ok {
		return id.(ComponentID)
	}
	id := ComponentID(xxhash.Sum64String(typeKey(t)))
	typeIDs.Store(t, id)
	return id
}

// typeKey builds a fully-qualified name so that same-named types from
// different packages never collide.
func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeKey(t.Elem())
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeFor returns the reflect.Type token for a component type T. It is the
// canonical way to reference component types in definition catalogs:
//
//	catalog.Define("enemy", registry.TypeFor[*Health](), registry.TypeFor[*Position]())
func TypeFor[T Component]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// sameComponent reports whether two components are the same instance (pointer
// types) or equal values. Non-comparable component types fall back to deep
// equality so Detach never panics.
func sameComponent(a, b Component) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
