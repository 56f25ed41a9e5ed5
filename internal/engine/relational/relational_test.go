package relational

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tablevet/tablevet/internal/metric"
)

func sqliteEngine(t *testing.T, fixtures []string) *Engine {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyFixtures(logrus.New(), db, SQLite(), fixtures))

	return NewEngine(logrus.New(), db, SQLite(), "trips")
}

func tripFixtures(ids []string) []string {
	ddl := []string{`CREATE TABLE trips (trip_id TEXT, region TEXT);`}
	for i, id := range ids {
		region := "emea"
		if i%2 == 1 {
			region = "apac"
		}
		ddl = append(ddl, `INSERT INTO trips (trip_id, region) VALUES ('`+id+`', '`+region+`');`)
	}
	return ddl
}

func TestIntrospectColumns_SQLiteCatalog(t *testing.T) {
	t.Parallel()

	engine := sqliteEngine(t, tripFixtures([]string{"0", "1"}))

	cols, err := engine.IntrospectColumns(context.Background(), metric.Kwargs{}, true)
	require.NoError(t, err)

	require.Equal(t, []metric.ColumnType{
		{Name: "trip_id", Type: "TEXT"},
		{Name: "region", Type: "TEXT"},
	}, cols)
}

func TestIntrospectColumns_MissingTable(t *testing.T) {
	t.Parallel()

	engine := sqliteEngine(t, tripFixtures(nil))

	_, err := engine.IntrospectColumns(context.Background(), metric.Kwargs{metric.KwargBatchID: "nope"}, true)

	var introspection *metric.SchemaIntrospectionError
	require.ErrorAs(t, err, &introspection)
}

func TestIncreasingMask_Monotonic(t *testing.T) {
	t.Parallel()

	engine := sqliteEngine(t, tripFixtures([]string{"0", "1", "2", "3", "3", "9", "11"}))

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{metric.KwargColumn: "trip_id"}, metric.DomainColumn)
	require.NoError(t, err)
	sel := domain.Handle.(*Selectable)

	mask, err := engine.IncreasingMask(context.Background(), sel, "trip_id", false)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, true, true, true}, mask)

	strict, err := engine.IncreasingMask(context.Background(), sel, "trip_id", true)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, false, true, true}, strict)
}

func TestIncreasingMask_Decrease(t *testing.T) {
	t.Parallel()

	engine := sqliteEngine(t, tripFixtures([]string{"1", "2", "3", "3", "0", "6", "9"}))

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{metric.KwargColumn: "trip_id"}, metric.DomainColumn)
	require.NoError(t, err)

	mask, err := engine.IncreasingMask(context.Background(), domain.Handle.(*Selectable), "trip_id", false)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, false, true, true}, mask)
}

func TestIncreasingMask_EmptyAndSingleRow(t *testing.T) {
	t.Parallel()

	for _, ids := range [][]string{nil, {"7"}} {
		fixtures := tripFixtures(ids)
		engine := sqliteEngine(t, fixtures)

		domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{metric.KwargColumn: "trip_id"}, metric.DomainColumn)
		require.NoError(t, err)

		mask, err := engine.IncreasingMask(context.Background(), domain.Handle.(*Selectable), "trip_id", false)
		require.NoError(t, err)
		require.Empty(t, mask)
	}
}

func TestIncreasingMask_NonDigitIsFatal(t *testing.T) {
	t.Parallel()

	engine := sqliteEngine(t, tripFixtures([]string{"0", "1", "2x", "3"}))

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{metric.KwargColumn: "trip_id"}, metric.DomainColumn)
	require.NoError(t, err)

	_, err = engine.IncreasingMask(context.Background(), domain.Handle.(*Selectable), "trip_id", false)

	var mismatch *metric.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "trip_id", mismatch.Column)
}

func TestIncreasingMask_NullIsFatal(t *testing.T) {
	t.Parallel()

	fixtures := tripFixtures([]string{"0", "1"})
	fixtures = append(fixtures, `INSERT INTO trips (trip_id, region) VALUES (NULL, 'emea');`)
	engine := sqliteEngine(t, fixtures)

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{metric.KwargColumn: "trip_id"}, metric.DomainColumn)
	require.NoError(t, err)

	_, err = engine.IncreasingMask(context.Background(), domain.Handle.(*Selectable), "trip_id", false)

	var nullErr *metric.NullValueError
	require.ErrorAs(t, err, &nullErr)
	require.Equal(t, 1, nullErr.Rows)
}

func TestIncreasingMask_RowCondition(t *testing.T) {
	t.Parallel()

	// emea rows (even indices) are 1, 3, 0: the 3 → 0 pair must fail.
	engine := sqliteEngine(t, tripFixtures([]string{"1", "9", "3", "9", "0", "9"}))

	domain, err := engine.ResolveDomain(context.Background(), metric.Kwargs{
		metric.KwargColumn:       "trip_id",
		metric.KwargRowCondition: "region == 'emea'",
	}, metric.DomainColumn)
	require.NoError(t, err)

	sel := domain.Handle.(*Selectable)
	require.Contains(t, sel.Where, "region")

	mask, err := engine.IncreasingMask(context.Background(), sel, "trip_id", false)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, mask)
}

func TestApplyFixtures_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fixtures := tripFixtures([]string{"0", "1"})
	require.NoError(t, ApplyFixtures(logrus.New(), db, SQLite(), fixtures))
	require.NoError(t, ApplyFixtures(logrus.New(), db, SQLite(), fixtures))

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM trips").Scan(&n))
	require.Equal(t, 2, n)
}
