package dataframe

import (
	"strings"

	"github.com/tablevet/tablevet/internal/metric"
)

// Field is a schema node: either a leaf column or a nested struct. The
// traversal in Flatten switches on the concrete type; anything else is an
// unrecognized shape and fails introspection.
type Field interface {
	FieldName() string
}

// LeafField is a scalar column or struct member.
type LeafField struct {
	Name string
	Type string
}

// FieldName returns the field's name.
func (f LeafField) FieldName() string { return f.Name }

// StructField is a nested group of fields.
type StructField struct {
	Name   string
	Fields []Field
}

// FieldName returns the field's name.
func (f StructField) FieldName() string { return f.Name }

// Schema is an ordered set of top-level fields.
type Schema struct {
	Fields []Field
}

// Flatten renders a schema as a flat ordered column list. Struct fields
// appear as entries of type "struct"; when includeNested is true their
// members follow as additional entries prefixed with the dotted parent path.
// Field names containing a literal dot are backtick-quoted so "a field named
// x.y" cannot be confused with "nested field y under struct x".
func Flatten(schema Schema, includeNested bool) ([]metric.ColumnType, error) {
	cols := make([]metric.ColumnType, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		flattened, err := flattenField(field, "", includeNested)
		if err != nil {
			return nil, err
		}
		cols = append(cols, flattened...)
	}
	return cols, nil
}

func flattenField(field Field, parent string, includeNested bool) ([]metric.ColumnType, error) {
	name := quoteFieldName(field.FieldName())
	if parent != "" {
		name = parent + "." + name
	}

	switch f := field.(type) {
	case LeafField:
		return []metric.ColumnType{{Name: name, Type: f.Type}}, nil
	case StructField:
		cols := []metric.ColumnType{{Name: name, Type: "struct"}}
		if includeNested {
			for _, child := range f.Fields {
				flattened, err := flattenField(child, name, includeNested)
				if err != nil {
					return nil, err
				}
				cols = append(cols, flattened...)
			}
		}
		return cols, nil
	default:
		return nil, &metric.SchemaIntrospectionError{Field: field.FieldName(), Reason: "unrecognized field type"}
	}
}

func quoteFieldName(name string) string {
	if strings.Contains(name, ".") {
		return "`" + name + "`"
	}
	return name
}

// splitPath splits a dotted column path into segments, honoring backtick
// quoting of segments that contain literal dots.
func splitPath(path string) []string {
	var (
		segments []string
		current  strings.Builder
		quoted   bool
	)

	for _, r := range path {
		switch {
		case r == '`':
			quoted = !quoted
		case r == '.' && !quoted:
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	segments = append(segments, current.String())
	return segments
}
