package dataframe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablevet/tablevet/internal/metric"
)

func TestFlatten_NestedStruct(t *testing.T) {
	t.Parallel()

	schema := Schema{Fields: []Field{
		LeafField{Name: "id", Type: "string"},
		StructField{Name: "outer", Fields: []Field{
			LeafField{Name: "inner", Type: "bigint"},
		}},
	}}

	cols, err := Flatten(schema, true)
	require.NoError(t, err)

	require.Equal(t, []metric.ColumnType{
		{Name: "id", Type: "string"},
		{Name: "outer", Type: "struct"},
		{Name: "outer.inner", Type: "bigint"},
	}, cols)
}

func TestFlatten_WithoutNested(t *testing.T) {
	t.Parallel()

	schema := Schema{Fields: []Field{
		StructField{Name: "outer", Fields: []Field{
			LeafField{Name: "inner", Type: "bigint"},
		}},
	}}

	cols, err := Flatten(schema, false)
	require.NoError(t, err)

	// The struct itself appears, its members do not.
	require.Equal(t, []metric.ColumnType{{Name: "outer", Type: "struct"}}, cols)
}

func TestFlatten_QuotesDottedNames(t *testing.T) {
	t.Parallel()

	schema := Schema{Fields: []Field{
		StructField{Name: "outer", Fields: []Field{
			LeafField{Name: "x.y", Type: "string"},
		}},
	}}

	cols, err := Flatten(schema, true)
	require.NoError(t, err)

	require.Equal(t, "outer.`x.y`", cols[1].Name)
}

type bogusField struct{}

func (bogusField) FieldName() string { return "bogus" }

func TestFlatten_UnrecognizedShape(t *testing.T) {
	t.Parallel()

	schema := Schema{Fields: []Field{bogusField{}}}

	_, err := Flatten(schema, true)

	var introspection *metric.SchemaIntrospectionError
	require.ErrorAs(t, err, &introspection)
	require.Equal(t, "bogus", introspection.Field)
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []string
	}{
		{"a", []string{"a"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{"outer.`x.y`", []string{"outer", "x.y"}},
		{"`a.b`.c", []string{"a.b", "c"}},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, splitPath(tt.path), "path %q", tt.path)
	}
}
