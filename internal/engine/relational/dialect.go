package relational

import "strings"

// Dialect renders the engine's generated SQL for one database flavor.
type Dialect interface {
	// Name is the golang-migrate database driver name for this flavor.
	Name() string
	// QuoteIdent quotes an identifier.
	QuoteIdent(name string) string
	// ColumnTypesQuery returns the catalog query listing a table's columns
	// as (name, type) rows in table order.
	ColumnTypesQuery(table string) (query string, args []any)
	// IsStringType reports whether a catalog type can hold the digit strings
	// the increasing predicate casts.
	IsStringType(dbType string) bool
	// DigitsPredicate renders a boolean SQL expression: expr consists only
	// of digits.
	DigitsPredicate(expr string) string
	// CastToInt renders an integer cast.
	CastToInt(expr string) string
	// Lag renders the previous-row value of expr over a single partition
	// ordered by a constant key. The tie-break among otherwise equal rows is
	// backend-defined and not deterministic.
	Lag(expr string) string
	// RowNumber renders the 1-based row number over the same window as Lag.
	RowNumber() string
}

type clickhouseDialect struct{}

// ClickHouse returns the ClickHouse dialect.
func ClickHouse() Dialect { return clickhouseDialect{} }

func (clickhouseDialect) Name() string { return "clickhouse" }

func (clickhouseDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func (clickhouseDialect) ColumnTypesQuery(table string) (string, []any) {
	return "SELECT name, type FROM system.columns WHERE database = currentDatabase() AND table = ? ORDER BY position", []any{table}
}

func (clickhouseDialect) IsStringType(dbType string) bool {
	switch {
	case dbType == "String", dbType == "Nullable(String)":
		return true
	case strings.HasPrefix(dbType, "LowCardinality(String"):
		return true
	case strings.HasPrefix(dbType, "FixedString"), strings.HasPrefix(dbType, "Nullable(FixedString"):
		return true
	}
	return false
}

func (clickhouseDialect) DigitsPredicate(expr string) string {
	return "match(" + expr + ", '^[0-9]+$')"
}

func (clickhouseDialect) CastToInt(expr string) string {
	return "toInt64(" + expr + ")"
}

func (clickhouseDialect) Lag(expr string) string {
	// lagInFrame needs the frame to reach the preceding row.
	return "lagInFrame(" + expr + ", 1) OVER (ORDER BY tuple() ROWS BETWEEN 1 PRECEDING AND CURRENT ROW)"
}

func (clickhouseDialect) RowNumber() string {
	return "row_number() OVER (ORDER BY tuple())"
}

type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return "sqlite3" }

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) ColumnTypesQuery(table string) (string, []any) {
	return "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", []any{table}
}

func (sqliteDialect) IsStringType(dbType string) bool {
	upper := strings.ToUpper(dbType)
	return strings.Contains(upper, "CHAR") || strings.Contains(upper, "TEXT") || strings.Contains(upper, "CLOB")
}

func (sqliteDialect) DigitsPredicate(expr string) string {
	return "(" + expr + " NOT GLOB '*[^0-9]*' AND " + expr + " <> '')"
}

func (sqliteDialect) CastToInt(expr string) string {
	return "CAST(" + expr + " AS INTEGER)"
}

func (sqliteDialect) Lag(expr string) string {
	return "LAG(" + expr + ") OVER (ORDER BY (SELECT 0))"
}

func (sqliteDialect) RowNumber() string {
	return "ROW_NUMBER() OVER (ORDER BY (SELECT 0))"
}
