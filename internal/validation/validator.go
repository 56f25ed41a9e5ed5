// Package validation provides per-request orchestration: it turns a suite of
// expectations into resolved metric plans, executes them against one engine,
// and reduces the outcomes into a run result.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tablevet/tablevet/internal/expectation"
	"github.com/tablevet/tablevet/internal/metric"
	"github.com/tablevet/tablevet/internal/runstats"
)

const defaultWorkers = 4

// Result is one expectation's outcome.
type Result struct {
	Expectation string
	Column      string
	Verdict     *expectation.Verdict
	Err         error
	Duration    time.Duration
}

// RunResult is the outcome of validating a whole suite.
type RunResult struct {
	RunID    string
	Dataset  string
	Results  []*Result
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
}

// Validator executes expectation suites against one engine. Expectations run
// on a bounded worker pool; the metric plan within one expectation stays
// strictly ordered and single-threaded.
type Validator struct {
	engine   metric.Engine
	resolver *metric.Resolver
	stats    runstats.Collector
	workers  int

	// catchExceptions converts metric computation failures into failed
	// results instead of aborting the run. The core itself never downgrades
	// a computation error into a false success; the error stays attached.
	catchExceptions bool

	log logrus.FieldLogger
}

// NewValidator creates a validator bound to an engine.
func NewValidator(log logrus.FieldLogger, engine metric.Engine, workers int, catchExceptions bool) *Validator {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Validator{
		engine:          engine,
		resolver:        metric.NewResolver(log),
		stats:           runstats.NewCollector(log),
		workers:         workers,
		catchExceptions: catchExceptions,
		log:             log.WithField("component", "validator"),
	}
}

// Start initializes the validator's run statistics.
func (v *Validator) Start(ctx context.Context) error {
	return v.stats.Start(ctx)
}

// Stop cleans up the validator.
func (v *Validator) Stop() error {
	return v.stats.Stop()
}

// Stats exposes the run statistics collector.
func (v *Validator) Stats() runstats.Collector { return v.stats }

// ValidateSuite runs every expectation in the suite and aggregates results.
// With catchExceptions off, the first computation failure aborts the run.
func (v *Validator) ValidateSuite(ctx context.Context, suite *expectation.Suite) (*RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	log := v.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"dataset": suite.Dataset,
	})
	log.WithField("expectations", len(suite.Expectations)).Info("validating suite")

	results := make([]*Result, len(suite.Expectations))
	g, gCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, v.workers)

	for i, spec := range suite.Expectations {
		i, spec := i, spec
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gCtx.Done():
				return gCtx.Err()
			}

			result, err := v.validateSpec(gCtx, spec)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &RunResult{
		RunID:    runID,
		Dataset:  suite.Dataset,
		Results:  results,
		Total:    len(results),
		Duration: time.Since(start),
	}
	for _, r := range results {
		if r.Err == nil && r.Verdict != nil && r.Verdict.Success {
			run.Passed++
		} else {
			run.Failed++
		}
	}

	log.WithFields(logrus.Fields{
		"passed":   run.Passed,
		"failed":   run.Failed,
		"duration": run.Duration,
	}).Info("suite validated")

	return run, nil
}

// validateSpec runs one expectation, applying the catchExceptions policy to
// computation failures.
func (v *Validator) validateSpec(ctx context.Context, spec *expectation.Spec) (*Result, error) {
	exp, err := spec.Build()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	verdict, err := v.ValidateExpectation(ctx, exp)
	duration := time.Since(start)

	result := &Result{
		Expectation: exp.Name(),
		Column:      spec.Column,
		Verdict:     verdict,
		Duration:    duration,
	}

	stat := runstats.ExpectationMetric{
		Expectation: exp.Name(),
		Column:      spec.Column,
		Duration:    duration,
		Timestamp:   time.Now(),
	}

	if err != nil {
		var compErr *metric.ComputationError
		if !v.catchExceptions || !errors.As(err, &compErr) {
			return nil, err
		}
		result.Err = err
		stat.Error = err.Error()
		v.stats.RecordExpectation(stat)

		v.log.WithError(err).WithField("expectation", exp.Name()).Warn("expectation computation failed")

		return result, nil
	}

	stat.Passed = verdict.Success
	v.stats.RecordExpectation(stat)

	return result, nil
}

// ValidateExpectation runs one expectation's full metric plan: declare
// dependencies, resolve the transitive closure in order, execute bottom-up,
// then reduce the verdict.
func (v *Validator) ValidateExpectation(ctx context.Context, exp expectation.Expectation) (*expectation.Verdict, error) {
	capability := v.engine.Capability()

	deps, err := exp.ValidationDependencies(capability)
	if err != nil {
		return nil, fmt.Errorf("declaring validation dependencies for %s: %w", exp.Name(), err)
	}

	plan, err := v.resolvePlan(deps, capability)
	if err != nil {
		return nil, err
	}

	executor := metric.NewExecutor(v.log, v.engine)
	executed, err := executor.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	verdict, err := exp.Validate(deps, executed)
	if err != nil {
		return nil, fmt.Errorf("reducing verdict for %s: %w", exp.Name(), err)
	}

	return verdict, nil
}

// resolvePlan merges the ordered resolutions of every declared configuration,
// deduplicating by structural identity so shared dependencies compute once.
func (v *Validator) resolvePlan(deps *expectation.ValidationDependencies, capability metric.Capability) ([]metric.Configuration, error) {
	seen := make(map[string]bool)
	var plan []metric.Configuration

	for _, cfg := range deps.All() {
		ordered, err := v.resolver.Resolve(cfg, capability)
		if err != nil {
			return nil, err
		}
		for _, c := range ordered {
			if seen[c.ID()] {
				continue
			}
			seen[c.ID()] = true
			plan = append(plan, c)
		}
	}

	return plan, nil
}
