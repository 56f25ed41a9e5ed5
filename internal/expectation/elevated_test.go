package expectation_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tablevet/tablevet/internal/engine/dataframe"
	"github.com/tablevet/tablevet/internal/engine/memtable"
	"github.com/tablevet/tablevet/internal/expectation"
	"github.com/tablevet/tablevet/internal/metric"
)

func point(coords ...any) map[string]any {
	return map[string]any{"type": "Point", "coordinates": coords}
}

func geomEngine(t *testing.T, values []any) metric.Engine {
	t.Helper()

	table, err := memtable.NewTable("sites", []memtable.Column{
		{Name: "location", Values: values},
	})
	require.NoError(t, err)
	return memtable.NewEngine(logrus.New(), table)
}

func TestElevation_AllPointsElevated(t *testing.T) {
	t.Parallel()

	engine := geomEngine(t, []any{
		point(1.0, 2.0, 100.0),
		point(3.0, 4.0, 0.0),
		`{"type":"Point","coordinates":[5,6,250]}`,
	})

	verdict, err := validate(t, engine, expectation.NewValuesHaveElevation("location"))
	require.NoError(t, err)
	require.True(t, verdict.Success)
	require.Equal(t, []expectation.ValueCount{{Value: true, Count: 3}}, verdict.Observed)
}

func TestElevation_MissingZFailsByDefault(t *testing.T) {
	t.Parallel()

	values := []any{
		point(1.0, 2.0, 100.0),
		point(3.0, 4.0), // no Z
		point(5.0, 6.0, nil),
		point(7.0, 8.0, 300.0),
	}

	verdict, err := validate(t, geomEngine(t, values), expectation.NewValuesHaveElevation("location"))
	require.NoError(t, err)
	require.False(t, verdict.Success)
	require.Equal(t, []expectation.ValueCount{
		{Value: false, Count: 2},
		{Value: true, Count: 2},
	}, verdict.Observed)
}

func TestElevation_MostlyThreshold(t *testing.T) {
	t.Parallel()

	values := []any{
		point(1.0, 2.0, 100.0),
		point(3.0, 4.0),
		point(5.0, 6.0, 200.0),
		point(7.0, 8.0, 300.0),
	}

	exp := expectation.NewValuesHaveElevation("location")
	exp.Mostly = 0.75

	verdict, err := validate(t, geomEngine(t, values), exp)
	require.NoError(t, err)
	require.True(t, verdict.Success)

	exp.Mostly = 0.8
	verdict, err = validate(t, geomEngine(t, values), exp)
	require.NoError(t, err)
	require.False(t, verdict.Success)
}

func TestElevation_NonGeometryIsFatal(t *testing.T) {
	t.Parallel()

	engine := geomEngine(t, []any{point(1.0, 2.0, 100.0), "not json", 42})

	_, err := validate(t, engine, expectation.NewValuesHaveElevation("location"))

	var mismatch *metric.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "location", mismatch.Column)
}

func TestElevation_MostlyOutOfRange(t *testing.T) {
	t.Parallel()

	exp := expectation.NewValuesHaveElevation("location")
	exp.Mostly = 1.5

	_, err := validate(t, geomEngine(t, []any{point(1.0, 2.0, 3.0)}), exp)
	require.ErrorContains(t, err, "mostly must be in [0,1]")
}

func TestElevation_UnsupportedOnDistributed(t *testing.T) {
	t.Parallel()

	schema := dataframe.Schema{Fields: []dataframe.Field{
		dataframe.LeafField{Name: "location", Type: "struct"},
	}}
	engine := dataframe.NewEngine(logrus.New(), dataframe.NewFrame(schema, nil))

	_, err := validate(t, engine, expectation.NewValuesHaveElevation("location"))

	var unsupported *metric.UnsupportedBackendError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, expectation.MetricValuesElevated, unsupported.Metric)
}

func TestElevation_EmptyColumnPassesVacuously(t *testing.T) {
	t.Parallel()

	verdict, err := validate(t, geomEngine(t, nil), expectation.NewValuesHaveElevation("location"))
	require.NoError(t, err)
	require.True(t, verdict.Success)
	require.Empty(t, verdict.Observed)
}
