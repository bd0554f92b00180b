package kernel

import (
	"errors"
	"strconv"
)

var (
	// ErrContainerAlreadySet is returned when a container is set on a kernel
	// that already has one.
	ErrContainerAlreadySet = errors.New("kernel: container already set")

	// ErrContainerNotFound is returned when boot finished without a container.
	ErrContainerNotFound = errors.New("kernel: container not found")
)

// LayerLoadError reports a configuration layer that exists but could not be
// loaded. Layers loaded before it stay applied.
type LayerLoadError struct {
	Layer string
	Path  string
	Err   error
}

// Error implements the error interface.
func (e *LayerLoadError) Error() string {
	// Example: kernel: loading layer "app.yml": ...
	return "kernel: loading layer " + strconv.Quote(e.Layer) + ": " + e.Err.Error()
}

func (e *LayerLoadError) Unwrap() error { return e.Err }

// CompileError reports a container that loaded but failed to compile
// (undefined parameter, dangling reference, ...).
type CompileError struct{ Err error }

// Error implements the error interface.
func (e *CompileError) Error() string { return "kernel: compiling container: " + e.Err.Error() }

func (e *CompileError) Unwrap() error { return e.Err }

// CacheWriteError reports a failure to persist the compiled container.
type CacheWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CacheWriteError) Error() string {
	return "kernel: writing container cache " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *CacheWriteError) Unwrap() error { return e.Err }

// CacheLoadError reports a cache artifact that exists but cannot be turned
// into a container. The artifact is not regenerated; delete it to rebuild.
type CacheLoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CacheLoadError) Error() string {
	return "kernel: loading container cache " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *CacheLoadError) Unwrap() error { return e.Err }

// UnsupportedMethodError is returned by Invoke when the app service cannot
// handle the requested method.
type UnsupportedMethodError struct {
	Method  string
	AppType string
}

// Error implements the error interface.
func (e *UnsupportedMethodError) Error() string {
	return "kernel: app service " + e.AppType + " does not support method " + strconv.Quote(e.Method)
}
