package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for layout operations.
var (
	// ErrInvalidReference indicates a node or edge handle that does not exist in the graph.
	ErrInvalidReference = errors.New("dynamo: invalid reference (unknown node or edge)")

	// ErrMalformedImport indicates a graph document that could not be imported.
	ErrMalformedImport = errors.New("dynamo: malformed graph document")

	// ErrInvalidConfiguration indicates a parameter or node property outside its valid range.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")
)

// ConfigError names the parameter that failed validation.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s = %g: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ReferenceError reports the handle that was not found.
type ReferenceError struct {
	Kind  string
	Index int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %d", ErrInvalidReference, e.Kind, e.Index)
}

func (e *ReferenceError) Unwrap() error {
	return ErrInvalidReference
}
