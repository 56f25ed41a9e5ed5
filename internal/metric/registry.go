package metric

import (
	"context"
	"fmt"
	"sync"
)

// ComputeFunc executes one metric against an engine. Dependency results are
// supplied keyed by metric name, already computed and read-only.
type ComputeFunc func(ctx context.Context, engine Engine, domainKwargs, valueKwargs Kwargs, deps map[string]any) (any, error)

// DependenciesFunc declares the metrics a configuration needs computed first.
// The declaration owns any domain-kwarg rewriting: a column-scoped metric
// depending on table-scoped data must drop the column key itself while
// retaining row restrictions.
type DependenciesFunc func(cfg Configuration, capability Capability) ([]Configuration, error)

// Implementation is one metric's computation for one capability.
type Implementation struct {
	Compute      ComputeFunc
	Dependencies DependenciesFunc // nil for leaf metrics
}

type registryKey struct {
	name       string
	capability Capability
}

var (
	registryMu sync.RWMutex
	registry   = make(map[registryKey]Implementation)
)

// Register adds an implementation for a (metric, capability) pair. It is
// called from package init blocks before any validation begins; the registry
// is read-only afterwards. Registering the same pair twice is a programming
// error and panics, mirroring database/sql driver registration.
func Register(name string, capability Capability, impl Implementation) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := registryKey{name: name, capability: capability}
	if _, dup := registry[key]; dup {
		panic(fmt.Sprintf("metric: Register called twice for %s/%s", name, capability))
	}
	if impl.Compute == nil {
		panic(fmt.Sprintf("metric: Register called with nil Compute for %s/%s", name, capability))
	}

	registry[key] = impl
}

// Lookup returns the implementation registered for a (metric, capability)
// pair, or an UnsupportedBackendError if none exists.
func Lookup(name string, capability Capability) (Implementation, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	impl, ok := registry[registryKey{name: name, capability: capability}]
	if !ok {
		return Implementation{}, &UnsupportedBackendError{Metric: name, Capability: capability}
	}

	return impl, nil
}
