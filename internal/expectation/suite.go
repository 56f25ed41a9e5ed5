package expectation

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	errSuiteDatasetRequired   = errors.New("suite dataset is required")
	errSuiteNoExpectations    = errors.New("suite has no expectations")
	errExpectationMissingType = errors.New("expectation missing type")
	errExpectationMissingCol  = errors.New("expectation missing column")
)

// Suite is a named list of expectation specs validated against one dataset.
type Suite struct {
	Dataset      string  `yaml:"dataset"`
	Expectations []*Spec `yaml:"expectations"`
}

// Spec is one expectation entry in a suite file.
type Spec struct {
	Type         string   `yaml:"type"`
	Column       string   `yaml:"column"`
	Strictly     bool     `yaml:"strictly,omitempty"`
	Mostly       *float64 `yaml:"mostly,omitempty"`
	RowCondition string   `yaml:"row_condition,omitempty"`
	BatchID      string   `yaml:"batch_id,omitempty"`
}

// LoadSuite reads and validates a suite file.
func LoadSuite(log logrus.FieldLogger, path string) (*Suite, error) {
	log = log.WithField("component", "suite_loader")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return nil, fmt.Errorf("parsing suite yaml: %w", err)
	}

	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("validating suite %s: %w", path, err)
	}

	log.WithFields(logrus.Fields{
		"dataset":      suite.Dataset,
		"expectations": len(suite.Expectations),
	}).Debug("loaded suite")

	return &suite, nil
}

// Validate checks structural completeness of the suite.
func (s *Suite) Validate() error {
	if s.Dataset == "" {
		return errSuiteDatasetRequired
	}
	if len(s.Expectations) == 0 {
		return errSuiteNoExpectations
	}

	for i, spec := range s.Expectations {
		if spec.Type == "" {
			return fmt.Errorf("expectation %d: %w", i, errExpectationMissingType)
		}
		if spec.Column == "" {
			return fmt.Errorf("expectation %d (%s): %w", i, spec.Type, errExpectationMissingCol)
		}
		if _, err := spec.Build(); err != nil {
			return fmt.Errorf("expectation %d: %w", i, err)
		}
	}

	return nil
}

// Build constructs the expectation this entry describes.
func (s *Spec) Build() (Expectation, error) {
	switch s.Type {
	case "expect_column_values_to_be_string_integers_increasing":
		return &StringIntegersIncreasing{
			Column:       s.Column,
			Strictly:     s.Strictly,
			RowCondition: s.RowCondition,
			BatchID:      s.BatchID,
		}, nil
	case "expect_column_values_to_have_elevation":
		exp := NewValuesHaveElevation(s.Column)
		exp.RowCondition = s.RowCondition
		exp.BatchID = s.BatchID
		if s.Mostly != nil {
			exp.Mostly = *s.Mostly
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown expectation type %q", s.Type)
	}
}
