package metric

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Executor runs resolved metric plans bottom-up against one engine. The
// executed-results map it produces is owned by a single validation request
// and read-only once returned.
type Executor struct {
	engine Engine
	log    logrus.FieldLogger
}

// NewExecutor creates an executor bound to an engine.
func NewExecutor(log logrus.FieldLogger, engine Engine) *Executor {
	return &Executor{
		engine: engine,
		log:    log.WithField("component", "metric_executor"),
	}
}

// Execute computes each configuration in order, supplying already-computed
// dependency results keyed by metric name. Results are stored under each
// configuration's structural identity. A failing implementation aborts the
// run with a ComputationError carrying the offending configuration; no
// partial result is stored for it.
func (e *Executor) Execute(ctx context.Context, ordered []Configuration) (map[string]any, error) {
	capability := e.engine.Capability()
	results := make(map[string]any, len(ordered))

	for _, cfg := range ordered {
		impl, err := Lookup(cfg.Name, capability)
		if err != nil {
			return nil, &ComputationError{Metric: cfg, Err: err}
		}

		deps, err := e.gatherDependencies(cfg, capability, impl, results)
		if err != nil {
			return nil, &ComputationError{Metric: cfg, Err: err}
		}

		e.log.WithField("metric", cfg.Name).Debug("computing metric")

		raw, err := impl.Compute(ctx, e.engine, cfg.DomainKwargs, cfg.ValueKwargs, deps)
		if err != nil {
			return nil, &ComputationError{Metric: cfg, Err: err}
		}

		results[cfg.ID()] = raw
	}

	return results, nil
}

// gatherDependencies maps the implementation's declared dependencies, by
// metric name, to their already-computed results. A missing result means the
// plan was not resolved through the Resolver and is a programming error.
func (e *Executor) gatherDependencies(
	cfg Configuration,
	capability Capability,
	impl Implementation,
	results map[string]any,
) (map[string]any, error) {
	if impl.Dependencies == nil {
		return nil, nil
	}

	declared, err := impl.Dependencies(cfg, capability)
	if err != nil {
		return nil, fmt.Errorf("declaring dependencies: %w", err)
	}

	deps := make(map[string]any, len(declared))
	for _, dep := range declared {
		raw, ok := results[dep.ID()]
		if !ok {
			return nil, fmt.Errorf("dependency %s not computed before %s", dep.Name, cfg.Name)
		}
		deps[dep.Name] = raw
	}

	return deps, nil
}
