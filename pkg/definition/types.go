package definition

import (
	"reflect"
	"sync"

	"github.com/zeusync/entitykit/pkg/registry"
)

// The type-name registry maps stable string names to component type tokens so
// definitions can be loaded from configuration files. It should be populated
// during initialization, typically from init() functions of the packages that
// declare the components.
var (
	typesMu     sync.RWMutex
	typesByName = make(map[string]reflect.Type)
)

// RegisterType associates a name with the component type T for use in
// configuration-loaded definitions:
//
//	definition.RegisterType[*Health]("Health")
func RegisterType[T registry.Component](name string) {
	typesMu.Lock()
	typesByName[name] = registry.TypeFor[T]()
	typesMu.Unlock()
}

// TypeByName resolves a registered component type name.
func TypeByName(name string) (reflect.Type, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	t, ok := typesByName[name]
	return t, ok
}

// RegisteredTypeNames returns the names of all registered component types.
func RegisteredTypeNames() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()
	out := make([]string, 0, len(typesByName))
	for name := range typesByName {
		out = append(out, name)
	}
	return out
}
