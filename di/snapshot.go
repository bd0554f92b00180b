package di

// Snapshot is the compiled, serializable state of a container: resolved
// parameters and definitions whose arguments hold resolved values and
// Reference markers. Instances registered with Set are not included.
type Snapshot struct {
	Parameters  map[string]any        `cbor:"parameters"`
	Definitions map[string]Definition `cbor:"definitions"`
}

// Snapshot returns the compiled state of c.
func (c *Container) Snapshot() (Snapshot, error) {
	if c == nil {
		return Snapshot{}, ErrNilContainer
	}
	if !c.compiled {
		return Snapshot{}, ErrNotCompiled
	}
	s := Snapshot{
		Parameters:  c.Parameters(),
		Definitions: make(map[string]Definition, len(c.defs)),
	}
	for id, def := range c.defs {
		s.Definitions[id] = def
	}
	return s, nil
}

// FromSnapshot rebuilds a compiled container from s without resolving
// anything again. It fails if a definition references a service that the
// snapshot does not define.
func FromSnapshot(s Snapshot, factories *FactoryRegistry, opts ...ContainerOption) (*Container, error) {
	c := NewContainer(s.Parameters, factories, opts...)
	for id, def := range s.Definitions {
		c.defs[id] = def
	}
	for _, id := range sortedKeys(c.defs) {
		if err := c.checkReferences(c.defs, c.defs[id].Arguments); err != nil {
			return nil, ReferenceError{ID: id, Err: err}
		}
	}
	c.compiled = true
	return c, nil
}
