package di

import (
	"errors"
	"fmt"
)

// Factory constructs a service instance from its resolved arguments.
//
// Arguments arrive in definition order with parameter placeholders already
// substituted and service references replaced by the referenced instances.
type Factory func(args ...any) (any, error)

// ErrFactoryPanic is returned if a factory panics while constructing a service.
var ErrFactoryPanic = errors.New("di: panic during factory call")

// FactoryRegistry maps factory names (as written in configuration files) to
// constructor functions.
//
// It is intentionally:
// - append-only while wiring
// - side effect free on lookup
// - shared between fresh and cached containers
//
// Expected usage:
//
//	reg := di.NewFactoryRegistry().
//		Provide("db", newDB).
//		Provide("basket.app", newApp)
type FactoryRegistry struct {
	items map[string]Factory
}

func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{items: map[string]Factory{}}
}

// Provide stores a factory under a name and returns the registry for chaining.
// A later Provide with the same name replaces the earlier factory.
func (r *FactoryRegistry) Provide(name string, f Factory) *FactoryRegistry {
	r.items[name] = f
	return r
}

// Resolve looks up the named factory and calls it, converting panics into errors.
//
// ok is false when no factory is registered under name.
func (r *FactoryRegistry) Resolve(name string, args ...any) (val any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			err = fmt.Errorf("%w: %q: %v", ErrFactoryPanic, name, rec)
		}
	}()

	f, ok := r.items[name]
	if !ok || f == nil {
		return nil, false, nil
	}
	v, err := f(args...)
	return v, true, err
}

// Get returns the factory if present (no panic).
func (r *FactoryRegistry) Get(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.items[name]
	return f, ok
}

// Names returns the registered factory names in no particular order.
func (r *FactoryRegistry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.items))
	for name := range r.items {
		out = append(out, name)
	}
	return out
}

// MustGet returns the factory or panics with a helpful message.
// Useful in examples/tests where missing factories should fail fast.
func (r *FactoryRegistry) MustGet(name string) Factory {
	f, ok := r.items[name]
	if !ok {
		panic(fmt.Errorf("di: registry missing factory %q", name))
	}
	return f
}
