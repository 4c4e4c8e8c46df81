package sim

import (
	"context"
	"sync"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// Ensemble runs the same configuration multiple times with consecutive
// seeds, one goroutine per run. Metrics are stateful, so each run gets
// fresh instances from the factory installed with WithMetrics; metrics
// attached to the base simulator are not carried over. The controller is
// shared across runs and must be safe for concurrent use: waveform
// controllers are, stateful loop controllers like a PID are not.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	metrics   func() []dynamo.Metric
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics installs a factory invoked once per run.
func (e *Ensemble) WithMetrics(factory func() []dynamo.Metric) *Ensemble {
	e.metrics = factory
	return e
}

func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New(e.base.sys, e.base.integrator, e.base.controller)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
