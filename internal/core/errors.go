package core

import (
	"fmt"
)

// InvalidParameterError is returned when generation parameters are rejected.
// It is always returned before any data is produced.
type InvalidParameterError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// SerializationError wraps a failure to persist or load a table
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization of %s failed: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
