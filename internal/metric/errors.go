package metric

import "fmt"

// TypeMismatchError indicates a column's actual type cannot support the
// requested predicate. It is fatal to the metric's computation; values are
// never coerced or skipped.
type TypeMismatchError struct {
	Column string
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q: type mismatch: %s", e.Column, e.Reason)
}

// NullValueError indicates a null or missing value was found where the
// predicate requires a total ordering. Null is never treated as vacuously
// passing.
type NullValueError struct {
	Column string
	Rows   int
}

func (e *NullValueError) Error() string {
	return fmt.Sprintf("column %q: %d null value(s) where a total ordering is required", e.Column, e.Rows)
}

// UnsupportedBackendError indicates no implementation is registered for the
// requested (metric, capability) pair.
type UnsupportedBackendError struct {
	Metric     string
	Capability Capability
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("metric %q has no implementation for capability %q", e.Metric, e.Capability)
}

// SchemaIntrospectionError indicates an unrecognized column or field shape was
// encountered during type introspection. Fatal, since downstream metrics would
// otherwise operate on an incomplete column list.
type SchemaIntrospectionError struct {
	Field  string
	Reason string
}

func (e *SchemaIntrospectionError) Error() string {
	return fmt.Sprintf("introspecting field %q: %s", e.Field, e.Reason)
}

// ComputationError wraps a failure during one metric's execution with the
// offending configuration attached for caller-side diagnostics.
type ComputationError struct {
	Metric Configuration
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computing metric %s: %v", e.Metric.ID(), e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
