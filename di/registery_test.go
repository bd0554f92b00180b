package di

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constFactory(v any) Factory {
	return func(...any) (any, error) { return v, nil }
}

//
// -----------------------------------------------------------------------------
// NewFactoryRegistry / Provide
// -----------------------------------------------------------------------------

// TestNewFactoryRegistry_Empty verifies NewFactoryRegistry initializes a non-nil registry with an empty map.
func TestNewFactoryRegistry_Empty(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry()
	require.NotNil(t, r)
	require.NotNil(t, r.items)
	assert.Len(t, r.items, 0)
	assert.Empty(t, r.Names())
}

// TestProvide_ChainsAndStores verifies Provide stores factories and returns the same registry for chaining.
func TestProvide_ChainsAndStores(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry()

	ret := r.Provide("a", constFactory(1)).Provide("b", constFactory("x"))
	require.Same(t, r, ret)

	assert.ElementsMatch(t, []string{"a", "b"}, r.Names())

	fa, okA := r.Get("a")
	require.True(t, okA)
	gotA, err := fa()
	require.NoError(t, err)
	assert.Equal(t, 1, gotA)
}

// TestProvide_Replaces verifies a second Provide under the same name wins.
func TestProvide_Replaces(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry().Provide("k", constFactory(1)).Provide("k", constFactory(2))

	val, ok, err := r.Resolve("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, val)
}

//
// -----------------------------------------------------------------------------
// Get
// -----------------------------------------------------------------------------

// TestGet_Missing verifies Get returns (nil,false) for missing names, including on a nil registry.
func TestGet_Missing(t *testing.T) {
	t.Parallel()

	got, ok := NewFactoryRegistry().Get("missing")
	assert.False(t, ok)
	assert.Nil(t, got)

	var nilReg *FactoryRegistry
	got, ok = nilReg.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

//
// -----------------------------------------------------------------------------
// Resolve
// -----------------------------------------------------------------------------

// TestResolve_PassesArguments verifies Resolve forwards arguments to the factory in order.
func TestResolve_PassesArguments(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry().Provide("join", func(args ...any) (any, error) {
		return args, nil
	})

	val, ok, err := r.Resolve("join", "a", 2, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"a", 2, true}, val)
}

// TestResolve_Missing verifies Resolve returns (nil,false,nil) for missing names.
func TestResolve_Missing(t *testing.T) {
	t.Parallel()

	val, ok, err := NewFactoryRegistry().Resolve("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

// TestResolve_FactoryError verifies factory errors are returned unchanged with ok=true.
func TestResolve_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := NewFactoryRegistry().Provide("bad", func(...any) (any, error) { return nil, boom })

	_, ok, err := r.Resolve("bad")
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
}

// TestResolve_RecoversFromPanic verifies Resolve converts factory panics into errors.
func TestResolve_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry().Provide("panics", func(...any) (any, error) {
		panic("kaboom")
	})

	val, _, err := r.Resolve("panics")
	require.Error(t, err)
	assert.Nil(t, val)
	assert.True(t, errors.Is(err, ErrFactoryPanic), "expected ErrFactoryPanic wrapping, got: %v", err)
	assert.Contains(t, err.Error(), "kaboom")
}

// TestResolve_NilReceiver verifies a nil registry reports a panic error instead of crashing.
func TestResolve_NilReceiver(t *testing.T) {
	t.Parallel()

	var r *FactoryRegistry

	val, ok, err := r.Resolve("k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.ErrorIs(t, err, ErrFactoryPanic)
}

//
// -----------------------------------------------------------------------------
// MustGet
// -----------------------------------------------------------------------------

// TestMustGet_Present verifies MustGet returns the stored factory.
func TestMustGet_Present(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry().Provide("k", constFactory("v"))
	v, err := r.MustGet("k")()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

// TestMustGet_Missing verifies MustGet panics with a helpful message when the name is missing.
func TestMustGet_Missing(t *testing.T) {
	t.Parallel()

	r := NewFactoryRegistry()

	require.PanicsWithError(t, `di: registry missing factory "missing"`, func() {
		_ = r.MustGet("missing")
	})
}
