package expectation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tablevet/tablevet/internal/expectation"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSuite(t *testing.T) {
	t.Parallel()

	path := writeSuite(t, `
dataset: trips
expectations:
  - type: expect_column_values_to_be_string_integers_increasing
    column: trip_id
    strictly: true
  - type: expect_column_values_to_have_elevation
    column: location
    mostly: 0.9
    row_condition: region == "emea"
`)

	suite, err := expectation.LoadSuite(logrus.New(), path)
	require.NoError(t, err)
	require.Equal(t, "trips", suite.Dataset)
	require.Len(t, suite.Expectations, 2)
	require.True(t, suite.Expectations[0].Strictly)
	require.NotNil(t, suite.Expectations[1].Mostly)
	require.Equal(t, 0.9, *suite.Expectations[1].Mostly)
}

func TestLoadSuite_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing_dataset",
			"expectations:\n  - type: expect_column_values_to_have_elevation\n    column: location\n",
			"suite dataset is required",
		},
		{
			"no_expectations",
			"dataset: trips\n",
			"suite has no expectations",
		},
		{
			"missing_type",
			"dataset: trips\nexpectations:\n  - column: trip_id\n",
			"missing type",
		},
		{
			"missing_column",
			"dataset: trips\nexpectations:\n  - type: expect_column_values_to_have_elevation\n",
			"missing column",
		},
		{
			"unknown_type",
			"dataset: trips\nexpectations:\n  - type: expect_unknown\n    column: x\n",
			`unknown expectation type "expect_unknown"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := expectation.LoadSuite(logrus.New(), writeSuite(t, tt.content))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSpecBuild(t *testing.T) {
	t.Parallel()

	mostly := 0.5
	spec := &expectation.Spec{
		Type:    "expect_column_values_to_have_elevation",
		Column:  "location",
		Mostly:  &mostly,
		BatchID: "b1",
	}

	exp, err := spec.Build()
	require.NoError(t, err)

	elevation, ok := exp.(*expectation.ValuesHaveElevation)
	require.True(t, ok)
	require.Equal(t, 0.5, elevation.Mostly)
	require.Equal(t, "b1", elevation.BatchID)
}

func TestSpecBuild_DefaultMostly(t *testing.T) {
	t.Parallel()

	spec := &expectation.Spec{Type: "expect_column_values_to_have_elevation", Column: "location"}

	exp, err := spec.Build()
	require.NoError(t, err)
	require.Equal(t, 1.0, exp.(*expectation.ValuesHaveElevation).Mostly)
}
