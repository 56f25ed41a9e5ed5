// Package dataframe provides the distributed-capability execution engine: a
// lazy frame over rows with a nested schema and a constant-partition window
// primitive. It stands in for an external distributed runtime while
// exercising the same windowed computation contract.
package dataframe

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tablevet/tablevet/internal/metric"
)

// Row is one record. Nested structs are nested maps.
type Row map[string]any

// Frame is a relational handle over rows. Deriving a filtered frame shares
// the backing rows; values are only materialized through Select or Lag.
type Frame struct {
	schema Schema
	rows   []Row
}

// NewFrame builds a frame over the given rows.
func NewFrame(schema Schema, rows []Row) *Frame {
	return &Frame{schema: schema, rows: rows}
}

// Schema returns the frame's schema.
func (f *Frame) Schema() Schema { return f.schema }

// Rows returns the number of rows in the frame.
func (f *Frame) Rows() int { return len(f.rows) }

// Select materializes one column by dotted path, in frame order. Missing
// leaves materialize as nil.
func (f *Frame) Select(path string) ([]any, error) {
	segments := splitPath(path)
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		v, err := lookupPath(row, segments)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Lag materializes, for each row, the previous row's value of the column
// under a window ordered by a constant key: all rows form one partition and
// the total order is the frame's own row order. For sources without an
// inherent order that tie-break is not deterministic. The first row, having
// no predecessor, yields nil.
func (f *Frame) Lag(path string) ([]any, error) {
	values, err := f.Select(path)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(values))
	for i := range values {
		if i == 0 {
			out[i] = nil
			continue
		}
		out[i] = values[i-1]
	}
	return out, nil
}

// filter returns a frame containing the rows matching the condition.
func (f *Frame) filter(cond *metric.Condition) (*Frame, error) {
	kept := make([]Row, 0, len(f.rows))
	for i, row := range f.rows {
		v, err := lookupPath(row, splitPath(cond.Column))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		match, err := cond.Matches(v)
		if err != nil {
			return nil, err
		}
		if match {
			kept = append(kept, row)
		}
	}
	return &Frame{schema: f.schema, rows: kept}, nil
}

func lookupPath(row Row, segments []string) (any, error) {
	var current any = map[string]any(row)
	for i, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("path segment %q: parent is not a struct", seg)
		}
		v, ok := m[seg]
		if !ok {
			return nil, nil
		}
		if i == len(segments)-1 {
			return v, nil
		}
		current = v
	}
	return current, nil
}

// Engine executes metrics against one frame.
type Engine struct {
	frame *Frame
	log   logrus.FieldLogger
}

// NewEngine creates a distributed-capability engine over a frame.
func NewEngine(log logrus.FieldLogger, frame *Frame) *Engine {
	return &Engine{
		frame: frame,
		log:   log.WithField("component", "dataframe_engine"),
	}
}

// Capability reports the distributed implementation family.
func (e *Engine) Capability() metric.Capability { return metric.CapabilityDistributed }

// ResolveDomain applies the row_condition restriction lazily and returns the
// restricted frame as the domain handle.
func (e *Engine) ResolveDomain(_ context.Context, domainKwargs metric.Kwargs, domainType metric.DomainType) (*metric.Domain, error) {
	frame := e.frame

	expr, _ := domainKwargs.String(metric.KwargRowCondition)
	cond, err := metric.ParseCondition(expr)
	if err != nil {
		return nil, err
	}
	if cond != nil {
		frame, err = frame.filter(cond)
		if err != nil {
			return nil, err
		}
	}

	compute := domainKwargs.Clone()
	accessor := metric.Kwargs{}

	if domainType == metric.DomainColumn {
		if column, ok := domainKwargs.String(metric.KwargColumn); ok {
			accessor[metric.KwargColumn] = column
			delete(compute, metric.KwargColumn)
		}
	}

	e.log.WithField("rows", frame.Rows()).Debug("resolved compute domain")

	return &metric.Domain{
		Handle:         frame,
		ComputeKwargs:  compute,
		AccessorKwargs: accessor,
	}, nil
}

// IntrospectColumns flattens the frame schema.
func (e *Engine) IntrospectColumns(_ context.Context, _ metric.Kwargs, includeNested bool) ([]metric.ColumnType, error) {
	return Flatten(e.frame.schema, includeNested)
}
