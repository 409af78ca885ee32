package registry

import (
	"sync"
	"sync/atomic"
)

// The active registry is an explicit, swappable process-wide default used by
// callers that omit a registry argument (notably definition catalogs). It is
// held behind an atomic pointer so helper constructors can read it without
// taking any lock.
var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	active          atomic.Pointer[Registry]
)

// Default returns the lazily-constructed default registry. It is always the
// same instance for the lifetime of the process.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(WithName("default"))
	})
	return defaultRegistry
}

// Current returns the active registry, falling back to Default when none has
// been set.
func Current() *Registry {
	if r := active.Load(); r != nil {
		return r
	}
	return Default()
}

// SetCurrent swaps the active registry. Passing nil clears the override so
// Current falls back to Default again.
func SetCurrent(r *Registry) {
	active.Store(r)
}
