package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tablevet/tablevet/internal/metric"
	"github.com/tablevet/tablevet/internal/output"
)

var columnsFlags struct {
	engine  string
	data    string
	db      string
	table   string
	nested  bool
	verbose bool
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Introspect and print a dataset's column types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger(columnsFlags.verbose)

		engine, closer, err := buildEngine(log, engineOptions{
			kind:     columnsFlags.engine,
			dataPath: columnsFlags.data,
			dbPath:   columnsFlags.db,
			table:    columnsFlags.table,
		})
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}

		cols, err := engine.IntrospectColumns(cmd.Context(), metric.Kwargs{}, columnsFlags.nested)
		if err != nil {
			return err
		}

		label := columnsFlags.table
		if label == "" {
			label = columnsFlags.data
		}
		output.NewFormatter(os.Stdout).PrintColumnTypes(label, cols)

		return nil
	},
}

func init() {
	columnsCmd.Flags().StringVar(&columnsFlags.engine, "engine", "memory", "execution engine: memory, dataframe, sqlite, or clickhouse")
	columnsCmd.Flags().StringVar(&columnsFlags.data, "data", "", "dataset fixture: csv (memory) or ndjson (dataframe)")
	columnsCmd.Flags().StringVar(&columnsFlags.db, "db", "", "sqlite database file (sqlite engine)")
	columnsCmd.Flags().StringVar(&columnsFlags.table, "table", "", "table name (relational engines)")
	columnsCmd.Flags().BoolVar(&columnsFlags.nested, "nested", true, "include nested struct fields as dotted entries")
	columnsCmd.Flags().BoolVarP(&columnsFlags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(columnsCmd)
}
