package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/config"
	"github.com/huckl3b3rry87/ctrlab/internal/control"
	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
	"github.com/huckl3b3rry87/ctrlab/internal/ident"
	"github.com/huckl3b3rry87/ctrlab/internal/lti"
	"github.com/huckl3b3rry87/ctrlab/internal/signal"
	"github.com/huckl3b3rry87/ctrlab/internal/sim"
	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// Pipeline wires the identification and design stages for one
// configuration: excite the plant, record a dataset, fit a discrete
// model, and place a feedback gain on the fitted or physical model.
type Pipeline struct {
	cfg *config.Config
	reg *Registry
	log *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{cfg: cfg, reg: NewRegistry(), log: log}
}

func (p *Pipeline) Registry() *Registry { return p.reg }

func (p *Pipeline) Plant() (*lti.StateSpace, error) {
	return p.reg.Model(p.cfg.Model, p.cfg.MotorParams())
}

// Collect excites the plant with the configured signal and samples the
// response at Ts. Measurement noise is added when configured, from the
// run seed so datasets are reproducible.
func (p *Pipeline) Collect(ctx context.Context) (*store.Dataset, error) {
	sys, err := p.Plant()
	if err != nil {
		return nil, err
	}
	integ, err := p.reg.Integrator(p.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	w, err := p.reg.Signal(p.cfg.Signal, p.cfg.SignalOpts, p.cfg.Duration, p.cfg.Seed)
	if err != nil {
		return nil, err
	}

	d, err := sim.Sample(ctx, sys, integ, w, p.cfg.Ts, p.cfg.Duration)
	if err != nil {
		return nil, err
	}
	if p.cfg.Noise > 0 {
		rng := rand.New(rand.NewSource(p.cfg.Seed))
		for i := range d.Outputs {
			d.Outputs[i] += p.cfg.Noise * rng.NormFloat64()
		}
	}
	p.log.Info("collected dataset",
		"model", p.cfg.Model, "signal", p.cfg.Signal,
		"samples", d.Len(), "ts", p.cfg.Ts, "noise", p.cfg.Noise)
	return d, nil
}

// Identify splits the dataset, fits a model on the estimation part and
// scores it on the held-out part.
func (p *Pipeline) Identify(d *store.Dataset) (*ident.Model, ident.Report, error) {
	idSet, valSet := d.Split(p.cfg.Ident.Split)
	na, nb, delay := p.cfg.Ident.NA, p.cfg.Ident.NB, p.cfg.Ident.Delay

	var m *ident.Model
	var err error
	switch p.cfg.Ident.Method {
	case "arx":
		m, err = ident.FitARX(idSet, na, nb, delay)
	case "oe":
		m, err = ident.FitOE(idSet, na, nb, delay, ident.DefaultOEOptions())
	case "search":
		var rep ident.Report
		m, rep, err = ident.OrderSearch(idSet, valSet,
			[]int{1, 2, 3, 4}, []int{1, 2, 3, 4}, delay)
		if err != nil {
			return nil, ident.Report{}, err
		}
		p.log.Info("order search picked model", "model", m.String())
		return m, rep, nil
	default:
		return nil, ident.Report{}, fmt.Errorf("unknown ident method: %s", p.cfg.Ident.Method)
	}
	if err != nil && m == nil {
		return nil, ident.Report{}, err
	}

	rep := ident.Evaluate(m, valSet)
	p.log.Info("identified model",
		"method", p.cfg.Ident.Method, "model", m.String(),
		"fit_percent", rep.FitPercent, "sim_rmse", rep.SimRMSE)
	return m, rep, err
}

// Design computes a state-feedback gain for the plant from the
// configured method, either damping-ratio pole placement or LQR.
func (p *Pipeline) Design() (*mat.Dense, []complex128, error) {
	sys, err := p.Plant()
	if err != nil {
		return nil, nil, err
	}
	nx := sys.StateDim()

	switch p.cfg.Design.Method {
	case "place":
		poles, err := control.PolesFromSpec(p.cfg.Design.Zeta, p.cfg.Design.Wn, nx)
		if err != nil {
			return nil, nil, err
		}
		k, err := control.Place(sys, poles)
		if err != nil {
			return nil, nil, err
		}
		p.log.Info("placed poles", "zeta", p.cfg.Design.Zeta, "wn", p.cfg.Design.Wn)
		return k, poles, nil
	case "lqr":
		q := p.cfg.Design.Q
		r := p.cfg.Design.R
		if len(q) != nx || len(r) != 1 {
			return nil, nil, fmt.Errorf("lqr weights need %d q and 1 r entries, got %d and %d",
				nx, len(q), len(r))
		}
		qm := mat.NewDense(nx, nx, nil)
		for i, v := range q {
			qm.Set(i, i, v)
		}
		rm := mat.NewDense(1, 1, []float64{r[0]})
		k, err := control.LQR(sys, qm, rm)
		if err != nil {
			return nil, nil, err
		}
		cl, err := sys.Feedback(k)
		if err != nil {
			return nil, nil, err
		}
		poles, err := cl.Poles()
		if err != nil {
			return nil, nil, err
		}
		p.log.Info("solved lqr gain", "q", q, "r", r)
		return k, poles, nil
	default:
		return nil, nil, fmt.Errorf("unknown design method: %s", p.cfg.Design.Method)
	}
}

// ClosedLoopStep runs the plant under state feedback toward a unit
// reference on the measured state and returns the recorded trajectory.
func (p *Pipeline) ClosedLoopStep(ctx context.Context, k *mat.Dense, ref float64) (*dynamo.Result, error) {
	sys, err := p.Plant()
	if err != nil {
		return nil, err
	}
	integ, err := p.reg.Integrator(p.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	nx := sys.StateDim()
	target := make(dynamo.State, nx)
	target[nx-1] = ref
	ctrl := control.NewStateFeedback(k, target)

	s := sim.New(sys, integ, ctrl)
	for _, m := range p.reg.DefaultMetrics(nx, ref) {
		s.AddMetric(m)
	}

	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = p.cfg.Dt
	simCfg.Duration = p.cfg.Duration
	simCfg.Seed = p.cfg.Seed
	return s.Run(ctx, make(dynamo.State, nx), simCfg)
}

// OpenLoopRun simulates the configured signal and controller against
// the plant at the integration step, for plotting rather than sampling.
func (p *Pipeline) OpenLoopRun(ctx context.Context) (*dynamo.Result, error) {
	sys, err := p.Plant()
	if err != nil {
		return nil, err
	}
	integ, err := p.reg.Integrator(p.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	var ctrl dynamo.Controller
	if p.cfg.Controller.Kind != "" && p.cfg.Controller.Kind != "none" {
		ctrl, err = p.reg.Controller(p.cfg.Controller.Kind, p.cfg.Controller)
		if err != nil {
			return nil, err
		}
		ctrl = measureOutput(sys, ctrl)
	} else {
		w, werr := p.reg.Signal(p.cfg.Signal, p.cfg.SignalOpts, p.cfg.Duration, p.cfg.Seed)
		if werr != nil {
			return nil, werr
		}
		ctrl = signal.AsController(w, sys.InputDim())
	}

	s := sim.New(sys, integ, ctrl)
	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = p.cfg.Dt
	simCfg.Duration = p.cfg.Duration
	simCfg.Seed = p.cfg.Seed
	return s.Run(ctx, make(dynamo.State, sys.StateDim()), simCfg)
}

// Metadata describes a collected run for the on-disk store.
func (p *Pipeline) Metadata(runID string) store.RunMetadata {
	return store.RunMetadata{
		ID:         runID,
		Model:      p.cfg.Model,
		Seed:       p.cfg.Seed,
		Ts:         p.cfg.Ts,
		Duration:   p.cfg.Duration,
		Signal:     p.cfg.Signal,
		Controller: p.cfg.Controller.Kind,
	}
}

// outputFeedback lets a controller that expects the measured output see
// y = Cx instead of the raw state vector.
type outputFeedback struct {
	sys  dynamo.OutputSystem
	ctrl dynamo.Controller
}

func measureOutput(sys dynamo.OutputSystem, ctrl dynamo.Controller) dynamo.Controller {
	return &outputFeedback{sys: sys, ctrl: ctrl}
}

func (o *outputFeedback) Compute(x dynamo.State, t float64) dynamo.Input {
	return o.ctrl.Compute(o.sys.Output(x, nil, t), t)
}
