// Package runstats provides validation run statistics collection and
// aggregation.
package runstats

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpectationMetric captures one expectation's outcome within a run.
type ExpectationMetric struct {
	Expectation string
	Column      string
	Passed      bool
	Duration    time.Duration
	Error       string // empty unless the computation failed
	Timestamp   time.Time
}

// Summary aggregates a whole run.
type Summary struct {
	TotalDuration     time.Duration
	TotalExpectations int
	Passed            int
	Failed            int
	Errored           int
}

// Collector accumulates expectation metrics for one validation run.
type Collector interface {
	Start(ctx context.Context) error
	Stop() error
	RecordExpectation(m ExpectationMetric)
	ExpectationMetrics() []ExpectationMetric
	Summary() Summary
}

type collector struct {
	log logrus.FieldLogger

	mu        sync.RWMutex
	metrics   []ExpectationMetric
	startTime time.Time
}

// NewCollector creates a new run statistics collector.
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:     log.WithField("component", "runstats_collector"),
		metrics: make([]ExpectationMetric, 0, 16),
	}
}

func (c *collector) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()

	c.log.Debug("runstats collector started")

	return nil
}

func (c *collector) Stop() error {
	c.log.Debug("runstats collector stopped")
	return nil
}

func (c *collector) RecordExpectation(m ExpectationMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

func (c *collector) ExpectationMetrics() []ExpectationMetric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ExpectationMetric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

func (c *collector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Summary{
		TotalExpectations: len(c.metrics),
	}
	if !c.startTime.IsZero() {
		s.TotalDuration = time.Since(c.startTime)
	}

	for _, m := range c.metrics {
		switch {
		case m.Error != "":
			s.Errored++
			s.Failed++
		case m.Passed:
			s.Passed++
		default:
			s.Failed++
		}
	}

	return s
}
