package di

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrFrozen is returned when definitions or parameters are changed on a
	// compiled container.
	ErrFrozen = errors.New("di: container is compiled and frozen")

	// ErrNotCompiled is returned when a service is requested before Compile.
	ErrNotCompiled = errors.New("di: container is not compiled")

	// ErrNilContainer is returned when an operation is applied to a nil container.
	ErrNilContainer = errors.New("di: nil container")
)

// MissingServiceError is returned when a service id is not defined.
//
// It is used by TryGetAs to distinguish "missing" from "wrong type".
type MissingServiceError struct{ ID string }

// Error implements the error interface.
func (e MissingServiceError) Error() string {
	// Example: di: service "db" missing
	return "di: service " + strconv.Quote(e.ID) + " missing"
}

// WrongTypeServiceError is returned when a service exists but is of a different type.
type WrongTypeServiceError struct {
	// ID is the service id requested.
	ID string

	// GotType is reflect.TypeOf(raw).String() for the instance.
	GotType string
}

// Error implements the error interface.
func (e WrongTypeServiceError) Error() string {
	// Example: di: service "db" has wrong type (*mypkg.Logger)
	return "di: service " + strconv.Quote(e.ID) + " has wrong type (" + e.GotType + ")"
}

// MissingParameterError is returned when a parameter or placeholder names an
// undefined parameter.
type MissingParameterError struct{ Name string }

// Error implements the error interface.
func (e MissingParameterError) Error() string {
	return "di: parameter " + strconv.Quote(e.Name) + " missing"
}

// MissingEnvError is returned when %env(NAME)% cannot be satisfied by the
// environment or an env(NAME) default parameter.
type MissingEnvError struct{ Name string }

// Error implements the error interface.
func (e MissingEnvError) Error() string {
	return "di: environment variable " + strconv.Quote(e.Name) + " not set"
}

// UnknownFactoryError is returned when a definition names a factory that is
// not registered.
type UnknownFactoryError struct {
	ID      string
	Factory string
}

// Error implements the error interface.
func (e UnknownFactoryError) Error() string {
	return "di: service " + strconv.Quote(e.ID) + " uses unknown factory " + strconv.Quote(e.Factory)
}

// CircularReferenceError reports a cycle between parameters or services.
type CircularReferenceError struct{ Path []string }

// Error implements the error interface.
func (e CircularReferenceError) Error() string {
	return "di: circular reference " + strings.Join(e.Path, " -> ")
}

// ReferenceError wraps a failure to resolve something referenced from a
// service definition.
type ReferenceError struct {
	ID  string
	Err error
}

// Error implements the error interface.
func (e ReferenceError) Error() string {
	return "di: service " + strconv.Quote(e.ID) + ": " + e.Err.Error()
}

func (e ReferenceError) Unwrap() error { return e.Err }

// FactoryError wraps an error returned by a factory.
type FactoryError struct {
	ID  string
	Err error
}

// Error implements the error interface.
func (e FactoryError) Error() string {
	return "di: building service " + strconv.Quote(e.ID) + ": " + e.Err.Error()
}

func (e FactoryError) Unwrap() error { return e.Err }

// GetAs returns the service typed as T.
//
// ok is false if the service is missing, fails to build, or is not a T.
func GetAs[T any](c *Container, id string) (T, bool) {
	var zero T
	raw, err := c.Get(id)
	if err != nil || raw == nil {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// TryGetAs returns the service typed as T.
//
// It returns:
//   - MissingServiceError if the id is not defined
//   - WrongTypeServiceError if the instance is not a T
//   - any error produced while building the service
func TryGetAs[T any](c *Container, id string) (T, error) {
	var zero T
	raw, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		got := "<nil>"
		if raw != nil {
			got = reflect.TypeOf(raw).String()
		}
		return zero, WrongTypeServiceError{ID: id, GotType: got}
	}
	return v, nil
}

// MustGetAs returns the service typed as T or panics.
func MustGetAs[T any](c *Container, id string) T {
	v, err := TryGetAs[T](c, id)
	if err != nil {
		panic(err)
	}
	return v
}
