package cmd

import (
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2" // ClickHouse driver registration
	_ "github.com/mattn/go-sqlite3"            // SQLite driver registration
	"github.com/sirupsen/logrus"

	"github.com/tablevet/tablevet/internal/config"
	"github.com/tablevet/tablevet/internal/dataset"
	"github.com/tablevet/tablevet/internal/engine/dataframe"
	"github.com/tablevet/tablevet/internal/engine/memtable"
	"github.com/tablevet/tablevet/internal/engine/relational"
	"github.com/tablevet/tablevet/internal/metric"
)

// engineOptions selects and parameterizes an execution engine.
type engineOptions struct {
	kind     string // memory, dataframe, sqlite, clickhouse
	dataPath string // csv (memory) or ndjson (dataframe) fixture
	dbPath   string // sqlite database file
	table    string // table name for relational engines
}

// buildEngine constructs the requested engine. The returned closer is nil for
// engines without a connection to release.
func buildEngine(log logrus.FieldLogger, opts engineOptions) (metric.Engine, func() error, error) {
	switch opts.kind {
	case "memory":
		if opts.dataPath == "" {
			return nil, nil, fmt.Errorf("--data is required for the memory engine")
		}
		table, err := dataset.LoadCSV(log, opts.table, opts.dataPath)
		if err != nil {
			return nil, nil, err
		}
		return memtable.NewEngine(log, table), nil, nil

	case "dataframe":
		if opts.dataPath == "" {
			return nil, nil, fmt.Errorf("--data is required for the dataframe engine")
		}
		frame, err := dataset.LoadNDJSON(log, opts.dataPath)
		if err != nil {
			return nil, nil, err
		}
		return dataframe.NewEngine(log, frame), nil, nil

	case "sqlite":
		if opts.dbPath == "" {
			return nil, nil, fmt.Errorf("--db is required for the sqlite engine")
		}
		db, err := sql.Open("sqlite3", opts.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		return relational.NewEngine(log, db, relational.SQLite(), opts.table), db.Close, nil

	case "clickhouse":
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		db, err := sql.Open("clickhouse", cfg.ClickhouseDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("opening clickhouse connection: %w", err)
		}
		return relational.NewEngine(log, db, relational.ClickHouse(), opts.table), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown engine %q (want memory, dataframe, sqlite, or clickhouse)", opts.kind)
	}
}
