package expectation

import (
	"context"
	"fmt"

	"github.com/tablevet/tablevet/internal/metric"
)

// MetricColumnTypes is the shared table-scoped column introspection metric.
// Many expectations depend on it to type-check their target column before
// computing.
const MetricColumnTypes = "table.column_types"

// KwargIncludeNested toggles flattening nested struct members into the
// column list.
const KwargIncludeNested = "include_nested"

func init() {
	impl := metric.Implementation{Compute: computeColumnTypes}
	metric.Register(MetricColumnTypes, metric.CapabilityInMemory, impl)
	metric.Register(MetricColumnTypes, metric.CapabilityDistributed, impl)
	metric.Register(MetricColumnTypes, metric.CapabilityRelational, impl)
}

// computeColumnTypes delegates to the engine's catalog introspection; each
// capability's engine owns the backend-native lookup. Registered once per
// capability so a new backend must opt in explicitly.
func computeColumnTypes(ctx context.Context, engine metric.Engine, domainKwargs, valueKwargs metric.Kwargs, _ map[string]any) (any, error) {
	includeNested := true
	if _, present := valueKwargs[KwargIncludeNested]; present {
		includeNested = valueKwargs.Bool(KwargIncludeNested)
	}

	cols, err := engine.IntrospectColumns(ctx, domainKwargs, includeNested)
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// columnTypesDependency builds the table-scoped introspection configuration
// issued on behalf of a column-scoped metric: the column key is dropped,
// row restrictions and batch identity are retained.
func columnTypesDependency(cfg metric.Configuration) metric.Configuration {
	return metric.NewConfiguration(
		MetricColumnTypes,
		cfg.DomainKwargs.Without(metric.KwargColumn),
		metric.Kwargs{KwargIncludeNested: true},
	)
}

// columnTypesResult reads the introspection dependency's result.
func columnTypesResult(deps map[string]any) ([]metric.ColumnType, error) {
	raw, ok := deps[MetricColumnTypes]
	if !ok {
		return nil, fmt.Errorf("dependency %s not supplied", MetricColumnTypes)
	}
	cols, ok := raw.([]metric.ColumnType)
	if !ok {
		return nil, fmt.Errorf("dependency %s: expected column descriptors, got %T", MetricColumnTypes, raw)
	}
	return cols, nil
}
