// Package expectation provides assertions over columnar data: each
// expectation declares the metric configurations it needs, and reduces the
// executed metrics' raw results into a success/failure verdict with a bounded
// observed-value summary. Metric implementations for every capability are
// registered from this package's init blocks, so importing it completes
// registry population before any validation begins.
package expectation

import (
	"fmt"
	"sort"

	"github.com/tablevet/tablevet/internal/metric"
)

// Expectation is one assertion over a dataset.
type Expectation interface {
	// Name is the expectation's catalog identifier.
	Name() string
	// ValidationDependencies declares every metric configuration this
	// expectation needs computed, keyed by metric name.
	ValidationDependencies(capability metric.Capability) (*ValidationDependencies, error)
	// Validate reads the top-level metric's raw result from the executed
	// metrics map and reduces it to a verdict.
	Validate(deps *ValidationDependencies, executed map[string]any) (*Verdict, error)
}

// ValidationDependencies is the set of metric configurations one expectation
// declares, built fresh per validation request and never shared.
type ValidationDependencies struct {
	configs map[string]metric.Configuration
	order   []string
}

// NewValidationDependencies creates an empty dependency set.
func NewValidationDependencies() *ValidationDependencies {
	return &ValidationDependencies{configs: make(map[string]metric.Configuration)}
}

// Set records the configuration for a metric name.
func (d *ValidationDependencies) Set(name string, cfg metric.Configuration) {
	if _, seen := d.configs[name]; !seen {
		d.order = append(d.order, name)
	}
	d.configs[name] = cfg
}

// Get returns the configuration declared under a metric name.
func (d *ValidationDependencies) Get(name string) (metric.Configuration, bool) {
	cfg, ok := d.configs[name]
	return cfg, ok
}

// All returns the declared configurations in declaration order.
func (d *ValidationDependencies) All() []metric.Configuration {
	out := make([]metric.Configuration, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.configs[name])
	}
	return out
}

// ValueCount is one distinct observed value with its occurrence count.
type ValueCount struct {
	Value any
	Count int
}

// Verdict is the outcome of one expectation: derived once, never mutated.
type Verdict struct {
	Success  bool
	Observed []ValueCount
}

// reduceAll reduces a boolean mask with logical AND. An empty mask passes
// vacuously: a single-row or empty column has no pair of rows that could
// violate an ordering.
func reduceAll(mask []bool) *Verdict {
	success := true
	for _, ok := range mask {
		if !ok {
			success = false
			break
		}
	}

	return &Verdict{Success: success, Observed: valueCounts(mask)}
}

// reduceRatio reduces a boolean mask against a mostly threshold in [0,1]:
// the expectation succeeds when at least that fraction of values passes. An
// empty mask passes vacuously.
func reduceRatio(mask []bool, mostly float64) *Verdict {
	if len(mask) == 0 {
		return &Verdict{Success: true, Observed: []ValueCount{}}
	}

	passed := 0
	for _, ok := range mask {
		if ok {
			passed++
		}
	}

	return &Verdict{
		Success:  float64(passed)/float64(len(mask)) >= mostly,
		Observed: valueCounts(mask),
	}
}

// valueCounts summarizes a mask as distinct values with counts, keeping the
// reported result bounded regardless of row count.
func valueCounts(mask []bool) []ValueCount {
	counts := make(map[bool]int, 2)
	for _, v := range mask {
		counts[v]++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i].Value) < fmt.Sprint(out[j].Value)
	})
	return out
}

// maskResult asserts one executed metric's raw result is a boolean mask.
func maskResult(deps *ValidationDependencies, executed map[string]any, name string) ([]bool, error) {
	cfg, ok := deps.Get(name)
	if !ok {
		return nil, fmt.Errorf("metric %s was not declared as a validation dependency", name)
	}

	raw, ok := executed[cfg.ID()]
	if !ok {
		return nil, fmt.Errorf("metric %s was not executed", name)
	}

	mask, ok := raw.([]bool)
	if !ok {
		return nil, fmt.Errorf("metric %s: expected boolean mask, got %T", name, raw)
	}
	return mask, nil
}
