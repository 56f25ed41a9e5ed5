// Package relational provides the SQL execution engine: metric predicates are
// rendered into dialect-specific SQL and evaluated server-side, without
// materializing rows client-side beyond the final mask.
package relational

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tablevet/tablevet/internal/metric"
)

// Selectable is the relational domain handle: a named table plus an optional
// rendered row restriction. No data is fetched until a metric runs a query
// against it.
type Selectable struct {
	Table string
	Where string
}

// Engine executes metrics against one table of a SQL database.
type Engine struct {
	db      *sql.DB
	dialect Dialect
	table   string
	log     logrus.FieldLogger
}

// NewEngine creates a relational engine over a table.
func NewEngine(log logrus.FieldLogger, db *sql.DB, dialect Dialect, table string) *Engine {
	return &Engine{
		db:      db,
		dialect: dialect,
		table:   table,
		log:     log.WithField("component", "relational_engine"),
	}
}

// Dialect returns the engine's SQL dialect.
func (e *Engine) Dialect() Dialect { return e.dialect }

// Capability reports the relational implementation family.
func (e *Engine) Capability() metric.Capability { return metric.CapabilityRelational }

// ResolveDomain renders the row_condition into a WHERE predicate and returns
// a Selectable. The batch_id kwarg, when present, overrides the engine's
// default table.
func (e *Engine) ResolveDomain(_ context.Context, domainKwargs metric.Kwargs, domainType metric.DomainType) (*metric.Domain, error) {
	table := e.table
	if batch, ok := domainKwargs.String(metric.KwargBatchID); ok && batch != "" {
		table = batch
	}

	expr, _ := domainKwargs.String(metric.KwargRowCondition)
	cond, err := metric.ParseCondition(expr)
	if err != nil {
		return nil, err
	}

	sel := &Selectable{Table: table}
	if cond != nil {
		sel.Where = cond.SQL(e.dialect.QuoteIdent)
	}

	compute := domainKwargs.Clone()
	accessor := metric.Kwargs{}

	if domainType == metric.DomainColumn {
		if column, ok := domainKwargs.String(metric.KwargColumn); ok {
			accessor[metric.KwargColumn] = column
			delete(compute, metric.KwargColumn)
		}
	}

	return &metric.Domain{
		Handle:         sel,
		ComputeKwargs:  compute,
		AccessorKwargs: accessor,
	}, nil
}

// IntrospectColumns lists the table's columns from the dialect's catalog.
func (e *Engine) IntrospectColumns(ctx context.Context, domainKwargs metric.Kwargs, _ bool) ([]metric.ColumnType, error) {
	table := e.table
	if batch, ok := domainKwargs.String(metric.KwargBatchID); ok && batch != "" {
		table = batch
	}

	query, args := e.dialect.ColumnTypesQuery(table)

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying column catalog for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []metric.ColumnType
	for rows.Next() {
		var col metric.ColumnType
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scanning column catalog row: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading column catalog: %w", err)
	}

	if len(cols) == 0 {
		return nil, &metric.SchemaIntrospectionError{Field: table, Reason: "table has no columns or does not exist"}
	}

	return cols, nil
}

// IncreasingMask evaluates the string-integers-increasing predicate
// server-side and returns the boolean mask with the first row already
// dropped, matching the other capabilities' convention.
//
// Nulls and non-digit values are rejected before the windowed query runs,
// since a partial ordering over them would be silently wrong.
func (e *Engine) IncreasingMask(ctx context.Context, sel *Selectable, column string, strictly bool) ([]bool, error) {
	qcol := e.dialect.QuoteIdent(column)
	from := e.fromClause(sel)

	nulls, err := e.countWhere(ctx, from, qcol+" IS NULL", sel.Where)
	if err != nil {
		return nil, err
	}
	if nulls > 0 {
		return nil, &metric.NullValueError{Column: column, Rows: nulls}
	}

	nonDigits, err := e.countWhere(ctx, from, "NOT "+e.dialect.DigitsPredicate(qcol), sel.Where)
	if err != nil {
		return nil, err
	}
	if nonDigits > 0 {
		return nil, &metric.TypeMismatchError{
			Column: column,
			Reason: fmt.Sprintf("%d value(s) are not castable to an ordered numeric type", nonDigits),
		}
	}

	cast := e.dialect.CastToInt(qcol)
	cmp := ">="
	if strictly {
		cmp = ">"
	}

	// Row 1 has no predecessor and is trivially increasing; it is emitted as
	// the sentinel and stripped below.
	query := fmt.Sprintf(
		"SELECT CASE WHEN rn = 1 THEN 1 WHEN cur - prev %s 0 THEN 1 ELSE 0 END AS ok FROM "+
			"(SELECT %s AS cur, %s AS prev, %s AS rn %s) w ORDER BY rn",
		cmp, cast, e.dialect.Lag(cast), e.dialect.RowNumber(), from,
	)

	e.log.WithField("query", query).Debug("evaluating increasing mask")

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("evaluating increasing mask: %w", err)
	}
	defer rows.Close()

	var mask []bool
	for rows.Next() {
		var ok int
		if err := rows.Scan(&ok); err != nil {
			return nil, fmt.Errorf("scanning mask row: %w", err)
		}
		mask = append(mask, ok == 1)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading mask rows: %w", err)
	}

	if len(mask) == 0 {
		return []bool{}, nil
	}
	return mask[1:], nil
}

func (e *Engine) fromClause(sel *Selectable) string {
	from := "FROM " + e.dialect.QuoteIdent(sel.Table)
	if sel.Where != "" {
		from += " WHERE " + sel.Where
	}
	return from
}

// countWhere counts rows matching predicate, ANDed with the selectable's own
// restriction which is already part of from when present.
func (e *Engine) countWhere(ctx context.Context, from, predicate, existingWhere string) (int, error) {
	query := "SELECT count(*) " + from
	if existingWhere != "" {
		query += " AND " + predicate
	} else {
		query += " WHERE " + predicate
	}

	var n int
	if err := e.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}
