package di

import (
	"errors"
	"sort"
)

// ErrEmptyID is returned when a service or parameter is registered without a name.
var ErrEmptyID = errors.New("di: empty id")

// Container holds parameters and service definitions and builds services on demand.
//
// A container has two phases. While open, parameters and definitions may be
// added or replaced (later writes win, which is what layered configuration
// relies on). Compile resolves every placeholder and reference and freezes the
// container; only then can services be built with Get.
//
// A Container is not safe for concurrent use.
type Container struct {
	params    map[string]any
	defs      map[string]Definition
	instances map[string]any
	factories *FactoryRegistry
	env       map[string]string
	compiled  bool
	building  []string
}

// ContainerOption configures a Container at construction.
type ContainerOption func(*Container)

// WithEnv sets the environment used to satisfy %env(NAME)% placeholders.
// Keys are raw variable names.
func WithEnv(env map[string]string) ContainerOption {
	return func(c *Container) {
		c.env = make(map[string]string, len(env))
		for k, v := range env {
			c.env[k] = v
		}
	}
}

// NewContainer returns an open container seeded with params.
// The params map is copied. A nil factories registry is replaced by an empty one.
func NewContainer(params map[string]any, factories *FactoryRegistry, opts ...ContainerOption) *Container {
	if factories == nil {
		factories = NewFactoryRegistry()
	}
	c := &Container{
		params:    make(map[string]any, len(params)),
		defs:      make(map[string]Definition),
		instances: make(map[string]any),
		factories: factories,
		env:       map[string]string{},
	}
	for k, v := range params {
		c.params[k] = v
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// HasParameter reports whether a parameter is defined.
func (c *Container) HasParameter(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.params[name]
	return ok
}

// Parameter returns a parameter value. On a compiled container the value is
// fully resolved; on an open one it is returned as written.
func (c *Container) Parameter(name string) (any, error) {
	if c == nil {
		return nil, ErrNilContainer
	}
	v, ok := c.params[name]
	if !ok {
		return nil, MissingParameterError{Name: name}
	}
	return v, nil
}

// Parameters returns a copy of all parameters.
func (c *Container) Parameters() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// SetParameter defines or replaces a parameter.
func (c *Container) SetParameter(name string, value any) error {
	if c == nil {
		return ErrNilContainer
	}
	if c.compiled {
		return ErrFrozen
	}
	if name == "" {
		return ErrEmptyID
	}
	c.params[name] = value
	return nil
}

// Define registers or replaces a service definition.
func (c *Container) Define(id string, def Definition) error {
	if c == nil {
		return ErrNilContainer
	}
	if c.compiled {
		return ErrFrozen
	}
	if id == "" {
		return ErrEmptyID
	}
	c.defs[id] = def
	return nil
}

// Definition returns the definition registered under id.
func (c *Container) Definition(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	d, ok := c.defs[id]
	return d, ok
}

// Set registers a ready-made instance under id. Instances set this way are
// not part of the snapshot and must be set again on a cached container.
func (c *Container) Set(id string, instance any) error {
	if c == nil {
		return ErrNilContainer
	}
	if id == "" {
		return ErrEmptyID
	}
	c.instances[id] = instance
	return nil
}

// HasService reports whether id is defined or set.
func (c *Container) HasService(id string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.defs[id]; ok {
		return true
	}
	_, ok := c.instances[id]
	return ok
}

// ServiceIDs returns the sorted ids of all defined or set services.
func (c *Container) ServiceIDs() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.defs)+len(c.instances))
	for id := range c.defs {
		seen[id] = struct{}{}
	}
	for id := range c.instances {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsCompiled reports whether Compile has succeeded.
func (c *Container) IsCompiled() bool { return c != nil && c.compiled }

// Compile resolves parameters and definitions and freezes the container.
//
// On error the container is left open and unchanged. Compiling a compiled
// container is a no-op.
func (c *Container) Compile() error {
	if c == nil {
		return ErrNilContainer
	}
	if c.compiled {
		return nil
	}

	params := make(map[string]any, len(c.params))
	for _, name := range sortedKeys(c.params) {
		v, err := c.resolveParameter(name, nil)
		if err != nil {
			return err
		}
		params[name] = v
	}

	defs := make(map[string]Definition, len(c.defs))
	for _, id := range sortedKeys(c.defs) {
		def := c.defs[id]
		var args []any
		if len(def.Arguments) > 0 {
			args = make([]any, len(def.Arguments))
		}
		for i, raw := range def.Arguments {
			v, err := c.parseArgument(raw)
			if err != nil {
				return ReferenceError{ID: id, Err: err}
			}
			args[i] = v
		}
		def.Arguments = args
		defs[id] = def
	}

	for _, id := range sortedKeys(defs) {
		if err := c.checkReferences(defs, defs[id].Arguments); err != nil {
			return ReferenceError{ID: id, Err: err}
		}
	}

	c.params = params
	c.defs = defs
	c.compiled = true
	return nil
}

func (c *Container) checkReferences(defs map[string]Definition, v any) error {
	switch t := v.(type) {
	case Reference:
		if t.Optional {
			return nil
		}
		if _, ok := defs[t.ID]; ok {
			return nil
		}
		if _, ok := c.instances[t.ID]; ok {
			return nil
		}
		return MissingServiceError{ID: t.ID}
	case []any:
		for _, item := range t {
			if err := c.checkReferences(defs, item); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if err := c.checkReferences(defs, t[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the service registered under id, building it on first use.
// Shared services are built once; non-shared services are rebuilt per call.
func (c *Container) Get(id string) (any, error) {
	if c == nil {
		return nil, ErrNilContainer
	}
	if inst, ok := c.instances[id]; ok {
		return inst, nil
	}
	def, ok := c.defs[id]
	if !ok {
		return nil, MissingServiceError{ID: id}
	}
	if !c.compiled {
		return nil, ErrNotCompiled
	}
	for _, b := range c.building {
		if b == id {
			return nil, CircularReferenceError{Path: append(append([]string{}, c.building...), id)}
		}
	}

	c.building = append(c.building, id)
	defer func() { c.building = c.building[:len(c.building)-1] }()

	args := make([]any, len(def.Arguments))
	for i, raw := range def.Arguments {
		v, err := c.materialize(raw)
		if err != nil {
			return nil, ReferenceError{ID: id, Err: err}
		}
		args[i] = v
	}

	inst, found, err := c.factories.Resolve(def.Factory, args...)
	if err != nil {
		return nil, FactoryError{ID: id, Err: err}
	}
	if !found {
		return nil, UnknownFactoryError{ID: id, Factory: def.Factory}
	}
	if def.Shared {
		c.instances[id] = inst
	}
	return inst, nil
}

// materialize replaces references with service instances.
func (c *Container) materialize(v any) (any, error) {
	switch t := v.(type) {
	case Reference:
		if t.Optional && !c.HasService(t.ID) {
			return nil, nil
		}
		return c.Get(t.ID)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := c.materialize(item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			r, err := c.materialize(item)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
