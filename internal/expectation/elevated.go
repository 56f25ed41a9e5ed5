package expectation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tablevet/tablevet/internal/engine/memtable"
	"github.com/tablevet/tablevet/internal/metric"
)

// MetricValuesElevated is the column-map metric behind
// ExpectColumnValuesToHaveElevation: a boolean per row, true when the row's
// point geometry carries a Z coordinate.
const MetricValuesElevated = "column_values.elevated.map"

// KwargMostly is the fraction of rows, in [0,1], that must pass for a
// mostly-style expectation to succeed.
const KwargMostly = "mostly"

func init() {
	// In-memory only; requesting another capability surfaces
	// UnsupportedBackendError at resolution time.
	metric.Register(MetricValuesElevated, metric.CapabilityInMemory, metric.Implementation{
		Compute: computeElevatedInMemory,
	})
}

func computeElevatedInMemory(ctx context.Context, engine metric.Engine, domainKwargs, _ metric.Kwargs, _ map[string]any) (any, error) {
	domain, err := engine.ResolveDomain(ctx, domainKwargs, metric.DomainColumn)
	if err != nil {
		return nil, err
	}

	view, ok := domain.Handle.(*memtable.View)
	if !ok {
		return nil, fmt.Errorf("in-memory domain handle is %T, want *memtable.View", domain.Handle)
	}

	column, ok := domain.AccessorKwargs.String(metric.KwargColumn)
	if !ok {
		return nil, fmt.Errorf("domain kwargs missing %q", metric.KwargColumn)
	}

	values, err := view.Column(column)
	if err != nil {
		return nil, err
	}

	mask := make([]bool, len(values))
	for i, v := range values {
		elevated, err := pointHasElevation(column, v)
		if err != nil {
			return nil, err
		}
		mask[i] = elevated
	}
	return mask, nil
}

// pointHasElevation reads a GeoJSON-shaped point value, given either as a
// decoded map or a JSON string, and reports whether it carries a non-null
// third coordinate.
func pointHasElevation(column string, v any) (bool, error) {
	var geom map[string]any

	switch val := v.(type) {
	case map[string]any:
		geom = val
	case string:
		if err := json.Unmarshal([]byte(val), &geom); err != nil {
			return false, &metric.TypeMismatchError{
				Column: column,
				Reason: fmt.Sprintf("value %q is not a geometry: %v", val, err),
			}
		}
	default:
		return false, &metric.TypeMismatchError{
			Column: column,
			Reason: fmt.Sprintf("value %v (%T) is not a geometry", v, v),
		}
	}

	coords, ok := geom["coordinates"].([]any)
	if !ok {
		return false, &metric.TypeMismatchError{
			Column: column,
			Reason: "geometry has no coordinate array",
		}
	}

	return len(coords) >= 3 && coords[2] != nil, nil
}

// ValuesHaveElevation expects a column of point geometries to carry
// elevation (Z) data on at least the Mostly fraction of rows.
type ValuesHaveElevation struct {
	Column       string
	Mostly       float64 // defaulted to 1.0 by NewValuesHaveElevation
	RowCondition string
	BatchID      string
}

// NewValuesHaveElevation builds the expectation with the default mostly
// threshold of 1.0.
func NewValuesHaveElevation(column string) *ValuesHaveElevation {
	return &ValuesHaveElevation{Column: column, Mostly: 1.0}
}

// Name returns the expectation's catalog identifier.
func (e *ValuesHaveElevation) Name() string {
	return "expect_column_values_to_have_elevation"
}

// ValidationDependencies declares the elevation map metric.
func (e *ValuesHaveElevation) ValidationDependencies(_ metric.Capability) (*ValidationDependencies, error) {
	if e.Column == "" {
		return nil, fmt.Errorf("%s: column is required", e.Name())
	}
	if e.Mostly < 0 || e.Mostly > 1 {
		return nil, fmt.Errorf("%s: mostly must be in [0,1], got %v", e.Name(), e.Mostly)
	}

	domain := metric.Kwargs{metric.KwargColumn: e.Column}
	if e.RowCondition != "" {
		domain[metric.KwargRowCondition] = e.RowCondition
	}
	if e.BatchID != "" {
		domain[metric.KwargBatchID] = e.BatchID
	}

	deps := NewValidationDependencies()
	deps.Set(MetricValuesElevated, metric.NewConfiguration(
		MetricValuesElevated,
		domain,
		metric.Kwargs{KwargMostly: e.Mostly},
	))
	return deps, nil
}

// Validate reduces the mask against the mostly threshold.
func (e *ValuesHaveElevation) Validate(deps *ValidationDependencies, executed map[string]any) (*Verdict, error) {
	mask, err := maskResult(deps, executed, MetricValuesElevated)
	if err != nil {
		return nil, err
	}
	return reduceRatio(mask, e.Mostly), nil
}
