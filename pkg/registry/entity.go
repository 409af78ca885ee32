package registry

// Entity is a non-owning handle to a named entity inside a registry. Identity
// is name-scoped: two handles with the same name and the same owning registry
// refer to the same entity and compare equal. The owner reference only routes
// operations; it does not keep the entity alive.
type Entity struct {
	name  string
	owner *Registry
}

// Name returns the entity's registry-unique name.
func (e Entity) Name() string {
	return e.name
}

// Owner returns the registry the handle was issued by.
func (e Entity) Owner() *Registry {
	return e.owner
}

// IsZero reports whether the handle is the zero value, i.e. not bound to any
// registry.
func (e Entity) IsZero() bool {
	return e.owner == nil && e.name == ""
}

// Live reports whether the handle still refers to a member of its owning
// registry. Dropped entities yield false.
func (e Entity) Live() bool {
	return e.owner != nil && e.owner.Contains(e)
}
