// Package memtable provides the in-memory execution engine: a fully
// materialized ordered columnar table with row-condition filtering.
package memtable

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tablevet/tablevet/internal/metric"
)

// Column is one named, ordered sequence of cell values.
type Column struct {
	Name   string
	Values []any
}

// Table is an immutable in-memory table. Column order is preserved.
type Table struct {
	name    string
	order   []string
	columns map[string][]any
	rows    int
}

// NewTable builds a table from ordered columns. All columns must share the
// same length.
func NewTable(name string, columns []Column) (*Table, error) {
	t := &Table{
		name:    name,
		columns: make(map[string][]any, len(columns)),
	}

	for i, col := range columns {
		if _, dup := t.columns[col.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, col.Name)
		}
		if i == 0 {
			t.rows = len(col.Values)
		} else if len(col.Values) != t.rows {
			return nil, fmt.Errorf("table %s: column %q has %d values, want %d", name, col.Name, len(col.Values), t.rows)
		}
		t.order = append(t.order, col.Name)
		t.columns[col.Name] = col.Values
	}

	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// View is a row-filtered slice of a table, the domain handle this engine
// hands to metric implementations.
type View struct {
	table   *Table
	indices []int // selected row indices, in table order
}

// Rows returns the number of selected rows.
func (v *View) Rows() int { return len(v.indices) }

// Column materializes the selected values of one column, in row order.
func (v *View) Column(name string) ([]any, error) {
	values, ok := v.table.columns[name]
	if !ok {
		return nil, fmt.Errorf("table %s has no column %q", v.table.name, name)
	}

	out := make([]any, len(v.indices))
	for i, idx := range v.indices {
		out[i] = values[idx]
	}
	return out, nil
}

// Engine executes metrics against one in-memory table.
type Engine struct {
	table *Table
	log   logrus.FieldLogger
}

// NewEngine creates an in-memory engine over a table.
func NewEngine(log logrus.FieldLogger, table *Table) *Engine {
	return &Engine{
		table: table,
		log:   log.WithField("component", "memtable_engine"),
	}
}

// Capability reports the in-memory implementation family.
func (e *Engine) Capability() metric.Capability { return metric.CapabilityInMemory }

// ResolveDomain applies the row_condition restriction and returns a View.
// For column domains the column key is left in the accessor kwargs for the
// metric implementation to apply against the materialized view.
func (e *Engine) ResolveDomain(_ context.Context, domainKwargs metric.Kwargs, domainType metric.DomainType) (*metric.Domain, error) {
	indices, err := e.selectRows(domainKwargs)
	if err != nil {
		return nil, err
	}

	compute := domainKwargs.Clone()
	accessor := metric.Kwargs{}

	if domainType == metric.DomainColumn {
		if column, ok := domainKwargs.String(metric.KwargColumn); ok {
			accessor[metric.KwargColumn] = column
			delete(compute, metric.KwargColumn)
		}
	}

	e.log.WithFields(logrus.Fields{
		"table": e.table.name,
		"rows":  len(indices),
	}).Debug("resolved compute domain")

	return &metric.Domain{
		Handle:         &View{table: e.table, indices: indices},
		ComputeKwargs:  compute,
		AccessorKwargs: accessor,
	}, nil
}

// IntrospectColumns reports each column's name and the type inferred from
// its values. The in-memory engine has no nested columns, so includeNested
// has no additional entries to contribute.
func (e *Engine) IntrospectColumns(_ context.Context, domainKwargs metric.Kwargs, _ bool) ([]metric.ColumnType, error) {
	if _, err := e.selectRows(domainKwargs); err != nil {
		return nil, err
	}

	out := make([]metric.ColumnType, 0, len(e.table.order))
	for _, name := range e.table.order {
		out = append(out, metric.ColumnType{Name: name, Type: inferType(e.table.columns[name])})
	}
	return out, nil
}

// selectRows evaluates the row_condition kwarg, if present, against every row.
func (e *Engine) selectRows(domainKwargs metric.Kwargs) ([]int, error) {
	expr, _ := domainKwargs.String(metric.KwargRowCondition)
	cond, err := metric.ParseCondition(expr)
	if err != nil {
		return nil, err
	}

	if cond == nil {
		indices := make([]int, e.table.rows)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	values, ok := e.table.columns[cond.Column]
	if !ok {
		return nil, fmt.Errorf("row condition references unknown column %q", cond.Column)
	}

	indices := make([]int, 0, e.table.rows)
	for i, v := range values {
		match, err := cond.Matches(v)
		if err != nil {
			return nil, err
		}
		if match {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// inferType reports the type of the first non-nil cell.
func inferType(values []any) string {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case string:
			return "string"
		case bool:
			return "boolean"
		case int, int64:
			return "integer"
		case float32, float64:
			return "double"
		case map[string]any:
			return "object"
		default:
			return fmt.Sprintf("%T", v)
		}
	}
	return "unknown"
}
