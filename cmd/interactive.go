package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tablevet/tablevet/internal/expectation"
	"github.com/tablevet/tablevet/internal/output"
	"github.com/tablevet/tablevet/internal/validation"
	"github.com/tablevet/tablevet/pkg/interactive"
)

var interactiveFlags struct {
	suiteDir string
	verbose  bool
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Pick a suite and engine interactively, then validate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger(interactiveFlags.verbose)

		suites, err := filepath.Glob(filepath.Join(interactiveFlags.suiteDir, "*.y*ml"))
		if err != nil {
			return fmt.Errorf("listing suites: %w", err)
		}
		if len(suites) == 0 {
			return fmt.Errorf("no suite files found under %s", interactiveFlags.suiteDir)
		}

		suitePath, err := interactive.SelectOne("Which suite would you like to validate?", suites)
		if err != nil {
			return exitQuietly(err)
		}

		kind, err := interactive.SelectOne("Which engine should execute it?", []string{"memory", "dataframe", "sqlite", "clickhouse"})
		if err != nil {
			return exitQuietly(err)
		}

		opts := engineOptions{kind: kind}
		switch kind {
		case "memory":
			opts.dataPath, err = interactive.AskPath("CSV dataset path:", "")
		case "dataframe":
			opts.dataPath, err = interactive.AskPath("NDJSON dataset path:", "")
		case "sqlite":
			opts.dbPath, err = interactive.AskPath("SQLite database file:", "")
		}
		if err != nil {
			return exitQuietly(err)
		}

		suite, err := expectation.LoadSuite(log, suitePath)
		if err != nil {
			return err
		}
		opts.table = suite.Dataset

		engine, closer, err := buildEngine(log, opts)
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}

		validator := validation.NewValidator(log, engine, 0, true)
		if err := validator.Start(cmd.Context()); err != nil {
			return err
		}
		defer func() { _ = validator.Stop() }()

		run, err := validator.ValidateSuite(cmd.Context(), suite)
		if err != nil {
			return err
		}

		output.NewFormatter(os.Stdout).PrintRunResult(run)

		return nil
	},
}

func exitQuietly(err error) error {
	if errors.Is(err, interactive.ErrExit) {
		return nil
	}
	return err
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveFlags.suiteDir, "dir", "suites", "directory containing suite yaml files")
	interactiveCmd.Flags().BoolVarP(&interactiveFlags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(interactiveCmd)
}
