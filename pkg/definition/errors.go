package definition

import "errors"

// Catalog-specific errors
var (
	ErrUnknownDefinition    = errors.New("definition not found")
	ErrCyclicInheritance    = errors.New("cyclic definition inheritance")
	ErrNotRegistered        = errors.New("entity is not registered")
	ErrUnknownComponentType = errors.New("unknown component type")
)
