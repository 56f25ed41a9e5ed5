package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablevet/tablevet/internal/config"
	"github.com/tablevet/tablevet/internal/expectation"
	"github.com/tablevet/tablevet/internal/output"
	"github.com/tablevet/tablevet/internal/validation"
)

var validateFlags struct {
	suite           string
	engine          string
	data            string
	db              string
	table           string
	workers         int
	catchExceptions bool
	verbose         bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an expectation suite against a dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger(validateFlags.verbose)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("workers") {
			validateFlags.workers = cfg.Workers
		}
		if !cmd.Flags().Changed("catch-exceptions") {
			validateFlags.catchExceptions = cfg.CatchExceptions
		}

		suite, err := expectation.LoadSuite(log, validateFlags.suite)
		if err != nil {
			return err
		}

		table := validateFlags.table
		if table == "" {
			table = suite.Dataset
		}

		engine, closer, err := buildEngine(log, engineOptions{
			kind:     validateFlags.engine,
			dataPath: validateFlags.data,
			dbPath:   validateFlags.db,
			table:    table,
		})
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}

		validator := validation.NewValidator(log, engine, validateFlags.workers, validateFlags.catchExceptions)
		if err := validator.Start(cmd.Context()); err != nil {
			return err
		}
		defer func() { _ = validator.Stop() }()

		run, err := validator.ValidateSuite(cmd.Context(), suite)
		if err != nil {
			return err
		}

		output.NewFormatter(os.Stdout).PrintRunResult(run)

		if run.Failed > 0 {
			return fmt.Errorf("%d of %d expectations failed", run.Failed, run.Total)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.suite, "suite", "", "path to the expectation suite yaml (required)")
	validateCmd.Flags().StringVar(&validateFlags.engine, "engine", "memory", "execution engine: memory, dataframe, sqlite, or clickhouse")
	validateCmd.Flags().StringVar(&validateFlags.data, "data", "", "dataset fixture: csv (memory) or ndjson (dataframe)")
	validateCmd.Flags().StringVar(&validateFlags.db, "db", "", "sqlite database file (sqlite engine)")
	validateCmd.Flags().StringVar(&validateFlags.table, "table", "", "table name (relational engines; defaults to the suite dataset)")
	validateCmd.Flags().IntVar(&validateFlags.workers, "workers", 4, "expectation worker pool size")
	validateCmd.Flags().BoolVar(&validateFlags.catchExceptions, "catch-exceptions", false, "report computation failures as failed expectations instead of aborting")
	validateCmd.Flags().BoolVarP(&validateFlags.verbose, "verbose", "v", false, "enable debug logging")
	_ = validateCmd.MarkFlagRequired("suite")

	rootCmd.AddCommand(validateCmd)
}
