package metric

import "context"

// Domain is an engine-resolved computation scope: a backend-native handle to
// the selected rows plus the kwargs the engine actually applied (compute) and
// the kwargs left for the metric implementation to apply itself (accessor,
// e.g. the column key on a materialized table).
type Domain struct {
	Handle         any
	ComputeKwargs  Kwargs
	AccessorKwargs Kwargs
}

// Engine is the execution backend adapter consumed by metric implementations.
// Implementations must be deterministic for identical kwargs within one
// validation run. Blocking I/O, and any timeout policy for it, lives behind
// this boundary.
type Engine interface {
	// Capability reports which implementation family this engine executes.
	Capability() Capability

	// ResolveDomain turns domain kwargs into an executable scope of the
	// requested domain type, applying row restrictions where the engine can.
	ResolveDomain(ctx context.Context, domainKwargs Kwargs, domainType DomainType) (*Domain, error)

	// IntrospectColumns reports the ordered column names and types visible
	// under the given domain kwargs. When includeNested is true, struct
	// fields are flattened into additional dotted entries.
	IntrospectColumns(ctx context.Context, domainKwargs Kwargs, includeNested bool) ([]ColumnType, error)
}
