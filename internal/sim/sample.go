package sim

import (
	"context"
	"fmt"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
	"github.com/huckl3b3rry87/ctrlab/internal/signal"
	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// Sample excites a SISO plant with a waveform under zero initial
// conditions and records input/output samples at the given period.
// This is the data-collection front end of the identification pipeline.
func Sample(ctx context.Context, sys dynamo.OutputSystem, integ dynamo.Integrator, w signal.Waveform, ts, duration float64) (*store.Dataset, error) {
	if sys.InputDim() != 1 || sys.OutputDim() != 1 {
		return nil, fmt.Errorf("sim: sampling requires a SISO plant, got %d inputs %d outputs",
			sys.InputDim(), sys.OutputDim())
	}
	if ts <= 0 || duration <= 0 {
		return nil, fmt.Errorf("sim: sample period and duration must be positive")
	}

	s := New(sys, integ, signal.AsController(w, 1))
	x0 := make(dynamo.State, sys.StateDim())

	// Integrate at a finer step than the sample period for accuracy.
	sub := 10
	cfg := dynamo.DefaultConfig()
	cfg.Dt = ts / float64(sub)
	cfg.Duration = duration

	result, err := s.Run(ctx, x0, cfg)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("sim: sampling run failed: %w", result.Errors[0])
	}

	d := &store.Dataset{}
	for i := 0; i < len(result.Times); i += sub {
		d.Times = append(d.Times, result.Times[i])
		if i < len(result.Inputs) {
			d.Inputs = append(d.Inputs, result.Inputs[i][0])
		} else {
			d.Inputs = append(d.Inputs, w.At(result.Times[i]))
		}
		d.Outputs = append(d.Outputs, result.Outputs[i][0])
	}
	return d, nil
}
