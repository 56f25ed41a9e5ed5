package dataframe

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tablevet/tablevet/internal/metric"
)

func testFrame() *Frame {
	schema := Schema{Fields: []Field{
		LeafField{Name: "seq", Type: "string"},
		StructField{Name: "geo", Fields: []Field{
			LeafField{Name: "zone", Type: "string"},
		}},
	}}
	rows := []Row{
		{"seq": "0", "geo": map[string]any{"zone": "a"}},
		{"seq": "1", "geo": map[string]any{"zone": "b"}},
		{"seq": "2", "geo": map[string]any{"zone": "a"}},
	}
	return NewFrame(schema, rows)
}

func TestSelect_TopLevelAndNested(t *testing.T) {
	t.Parallel()

	frame := testFrame()

	seq, err := frame.Select("seq")
	require.NoError(t, err)
	require.Equal(t, []any{"0", "1", "2"}, seq)

	zones, err := frame.Select("geo.zone")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b", "a"}, zones)
}

func TestSelect_MissingLeafIsNull(t *testing.T) {
	t.Parallel()

	frame := testFrame()

	values, err := frame.Select("geo.missing")
	require.NoError(t, err)
	require.Equal(t, []any{nil, nil, nil}, values)
}

func TestLag_FirstRowHasNoPredecessor(t *testing.T) {
	t.Parallel()

	frame := testFrame()

	lagged, err := frame.Lag("seq")
	require.NoError(t, err)
	require.Equal(t, []any{nil, "0", "1"}, lagged)
}

func TestResolveDomain_FiltersLazily(t *testing.T) {
	t.Parallel()

	engine := NewEngine(logrus.New(), testFrame())

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{
		metric.KwargColumn:       "seq",
		metric.KwargRowCondition: `geo.zone == "a"`,
	}, metric.DomainColumn)
	require.NoError(t, err)

	filtered := domain.Handle.(*Frame)
	require.Equal(t, 2, filtered.Rows())

	seq, err := filtered.Select("seq")
	require.NoError(t, err)
	require.Equal(t, []any{"0", "2"}, seq)
}

func TestIntrospectColumns_Nested(t *testing.T) {
	t.Parallel()

	engine := NewEngine(logrus.New(), testFrame())

	cols, err := engine.IntrospectColumns(context.Background(), metric.Kwargs{}, true)
	require.NoError(t, err)

	require.Equal(t, []metric.ColumnType{
		{Name: "seq", Type: "string"},
		{Name: "geo", Type: "struct"},
		{Name: "geo.zone", Type: "string"},
	}, cols)
}
