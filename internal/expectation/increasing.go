package expectation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tablevet/tablevet/internal/engine/dataframe"
	"github.com/tablevet/tablevet/internal/engine/memtable"
	"github.com/tablevet/tablevet/internal/engine/relational"
	"github.com/tablevet/tablevet/internal/metric"
)

// MetricStringIntegersIncreasing is the column-map metric behind
// ExpectColumnValuesToBeStringIntegersIncreasing: a boolean per adjacent-row
// pair, true when the casted value did not decrease (or strictly increased).
const MetricStringIntegersIncreasing = "column_values.string_integers.increasing.map"

// KwargStrictly switches the pairwise comparison from >= to >.
const KwargStrictly = "strictly"

func init() {
	deps := func(cfg metric.Configuration, _ metric.Capability) ([]metric.Configuration, error) {
		return []metric.Configuration{columnTypesDependency(cfg)}, nil
	}

	metric.Register(MetricStringIntegersIncreasing, metric.CapabilityInMemory, metric.Implementation{
		Compute:      computeIncreasingInMemory,
		Dependencies: deps,
	})
	metric.Register(MetricStringIntegersIncreasing, metric.CapabilityDistributed, metric.Implementation{
		Compute:      computeIncreasingDistributed,
		Dependencies: deps,
	})
	metric.Register(MetricStringIntegersIncreasing, metric.CapabilityRelational, metric.Implementation{
		Compute:      computeIncreasingRelational,
		Dependencies: deps,
	})
}

// computeIncreasingInMemory materializes the column, validates every value is
// a digit-only string, casts, and compares adjacent differences to zero. The
// mask has one entry per adjacent pair: length n-1, nothing for the first row.
func computeIncreasingInMemory(ctx context.Context, engine metric.Engine, domainKwargs, valueKwargs metric.Kwargs, _ map[string]any) (any, error) {
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

	ints, err := castDigitStrings(column, values)
	if err != nil {
		return nil, err
	}

	return diffMask(ints, valueKwargs.Bool(KwargStrictly)), nil
}

// computeIncreasingDistributed type-checks the column against the
// introspected schema, rejects nulls, then computes the windowed
// predecessor difference. The window's first row gets the trivially-passing
// sentinel and is dropped before returning, normalizing to the same n-1
// convention as the in-memory variant.
func computeIncreasingDistributed(ctx context.Context, engine metric.Engine, domainKwargs, valueKwargs metric.Kwargs, deps map[string]any) (any, error) {
	column, ok := domainKwargs.String(metric.KwargColumn)
	if !ok {
		return nil, fmt.Errorf("domain kwargs missing %q", metric.KwargColumn)
	}

	if err := requireStringColumn(deps, column, func(t string) bool { return t == "string" }); err != nil {
		return nil, err
	}

	domain, err := engine.ResolveDomain(ctx, domainKwargs, metric.DomainColumn)
	if err != nil {
		return nil, err
	}

	frame, ok := domain.Handle.(*dataframe.Frame)
	if !ok {
		return nil, fmt.Errorf("distributed domain handle is %T, want *dataframe.Frame", domain.Handle)
	}

	values, err := frame.Select(column)
	if err != nil {
		return nil, err
	}

	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	if nulls > 0 {
		// An ordering comparison over nulls is not well-defined and must not
		// silently pass.
		return nil, &metric.NullValueError{Column: column, Rows: nulls}
	}

	ints, err := castDigitStrings(column, values)
	if err != nil {
		return nil, err
	}

	lagged, err := frame.Lag(column)
	if err != nil {
		return nil, err
	}

	strictly := valueKwargs.Bool(KwargStrictly)

	// Sentinel 1 for the first row: trivially increasing, never able to fail.
	mask := make([]bool, len(ints))
	for i := range ints {
		diff := int64(1)
		if lagged[i] != nil {
			prev, err := castDigitString(column, lagged[i])
			if err != nil {
				return nil, err
			}
			diff = ints[i] - prev
		}
		if strictly {
			mask[i] = diff > 0
		} else {
			mask[i] = diff >= 0
		}
	}

	if len(mask) == 0 {
		return []bool{}, nil
	}
	return mask[1:], nil
}

// computeIncreasingRelational type-checks the column via the catalog
// dependency, then delegates to the engine's server-side generated
// expression. The engine returns the mask already normalized.
func computeIncreasingRelational(ctx context.Context, engine metric.Engine, domainKwargs, valueKwargs metric.Kwargs, deps map[string]any) (any, error) {
	column, ok := domainKwargs.String(metric.KwargColumn)
	if !ok {
		return nil, fmt.Errorf("domain kwargs missing %q", metric.KwargColumn)
	}

	rel, ok := engine.(*relational.Engine)
	if !ok {
		return nil, fmt.Errorf("relational engine is %T, want *relational.Engine", engine)
	}

	if err := requireStringColumn(deps, column, rel.Dialect().IsStringType); err != nil {
		return nil, err
	}

	domain, err := engine.ResolveDomain(ctx, domainKwargs, metric.DomainColumn)
	if err != nil {
		return nil, err
	}

	sel, ok := domain.Handle.(*relational.Selectable)
	if !ok {
		return nil, fmt.Errorf("relational domain handle is %T, want *relational.Selectable", domain.Handle)
	}

	return rel.IncreasingMask(ctx, sel, column, valueKwargs.Bool(KwargStrictly))
}

// requireStringColumn checks the introspected type of column against the
// capability's notion of a castable string type.
func requireStringColumn(deps map[string]any, column string, isString func(string) bool) error {
	cols, err := columnTypesResult(deps)
	if err != nil {
		return err
	}

	for _, col := range cols {
		if col.Name != column {
			continue
		}
		if !isString(col.Type) {
			return &metric.TypeMismatchError{
				Column: column,
				Reason: fmt.Sprintf("type %q is not a string type castable to int", col.Type),
			}
		}
		return nil
	}

	return &metric.SchemaIntrospectionError{Field: column, Reason: "column not present in introspected schema"}
}

// castDigitStrings casts every value, failing on the first violation so
// partial ordering information is never silently wrong.
func castDigitStrings(column string, values []any) ([]int64, error) {
	ints := make([]int64, len(values))
	for i, v := range values {
		n, err := castDigitString(column, v)
		if err != nil {
			return nil, err
		}
		ints[i] = n
	}
	return ints, nil
}

func castDigitString(column string, v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, &metric.TypeMismatchError{
			Column: column,
			Reason: fmt.Sprintf("value %v (%T) must be a string-type capable of being cast to int", v, v),
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || len(s) == 0 || s[0] == '-' || s[0] == '+' {
		return 0, &metric.TypeMismatchError{
			Column: column,
			Reason: fmt.Sprintf("value %q must be a digit-only string capable of being cast to int", s),
		}
	}
	return n, nil
}

// diffMask compares each adjacent difference to zero.
func diffMask(ints []int64, strictly bool) []bool {
	if len(ints) <= 1 {
		return []bool{}
	}

	mask := make([]bool, len(ints)-1)
	for i := 1; i < len(ints); i++ {
		diff := ints[i] - ints[i-1]
		if strictly {
			mask[i-1] = diff > 0
		} else {
			mask[i-1] = diff >= 0
		}
	}
	return mask
}

// StringIntegersIncreasing expects a column of string-typed integers to be
// monotonically increasing, strictly so when Strictly is set.
type StringIntegersIncreasing struct {
	Column       string
	Strictly     bool
	RowCondition string
	BatchID      string
}

// Name returns the expectation's catalog identifier.
func (e *StringIntegersIncreasing) Name() string {
	return "expect_column_values_to_be_string_integers_increasing"
}

// ValidationDependencies declares the top-level map metric; its own
// column-type dependency is pulled in transitively by the resolver.
func (e *StringIntegersIncreasing) ValidationDependencies(_ metric.Capability) (*ValidationDependencies, error) {
	if e.Column == "" {
		return nil, fmt.Errorf("%s: column is required", e.Name())
	}

	domain := metric.Kwargs{metric.KwargColumn: e.Column}
	if e.RowCondition != "" {
		domain[metric.KwargRowCondition] = e.RowCondition
	}
	if e.BatchID != "" {
		domain[metric.KwargBatchID] = e.BatchID
	}

	deps := NewValidationDependencies()
	deps.Set(MetricStringIntegersIncreasing, metric.NewConfiguration(
		MetricStringIntegersIncreasing,
		domain,
		metric.Kwargs{KwargStrictly: e.Strictly},
	))
	return deps, nil
}

// Validate reduces the mask with logical AND over every adjacent pair.
func (e *StringIntegersIncreasing) Validate(deps *ValidationDependencies, executed map[string]any) (*Verdict, error) {
	mask, err := maskResult(deps, executed, MetricStringIntegersIncreasing)
	if err != nil {
		return nil, err
	}
	return reduceAll(mask), nil
}
