package experiment

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/huckl3b3rry87/ctrlab/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRegistryUnknownNames(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Model("warp_drive", config.DefaultConfig().MotorParams()); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := r.Integrator("magic"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if _, err := r.Signal("noise", config.SignalConfig{}, 1, 1); err == nil {
		t.Error("expected error for unknown signal")
	}
	if _, err := r.Controller("hinf", config.ControlConfig{}); err == nil {
		t.Error("expected error for unknown controller")
	}
}

func TestRegistryListModels(t *testing.T) {
	names := NewRegistry().ListModels()
	if len(names) != 2 {
		t.Errorf("expected 2 models, got %d", len(names))
	}
}

func TestPipelineCollectIdentify(t *testing.T) {
	cfg := config.Preset("motor_speed", "ident")
	cfg.Noise = 0
	p := New(cfg, discard())

	d, err := p.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if d.Len() < 100 {
		t.Fatalf("expected a few hundred samples, got %d", d.Len())
	}

	m, rep, err := p.Identify(d)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if m == nil {
		t.Fatal("expected a model")
	}
	if rep.FitPercent < 95 {
		t.Errorf("expected high fit on noiseless data, got %.2f%%", rep.FitPercent)
	}
}

func TestPipelineCollectReproducible(t *testing.T) {
	cfg := config.Preset("motor_speed", "ident")
	p := New(cfg, discard())

	d1, err := p.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	d2, err := p.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for k := range d1.Outputs {
		if d1.Outputs[k] != d2.Outputs[k] {
			t.Fatalf("same seed should reproduce sample %d", k)
		}
	}
}

func TestPipelineDesignAndStep(t *testing.T) {
	cfg := config.Preset("motor_position", "servo")
	p := New(cfg, discard())

	k, poles, err := p.Design()
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	if k == nil || len(poles) != 3 {
		t.Fatalf("expected a gain and 3 poles, got %v", poles)
	}

	res, err := p.ClosedLoopStep(context.Background(), k, 1.0)
	if err != nil {
		t.Fatalf("closed loop: %v", err)
	}
	final := res.States[len(res.States)-1]
	if math.Abs(final[len(final)-1]-1.0) > 0.02 {
		t.Errorf("expected angle to settle at 1.0, got %f", final[len(final)-1])
	}
}

func TestPipelineLQRDesign(t *testing.T) {
	cfg := config.Preset("motor_position", "lqr")
	p := New(cfg, discard())

	k, poles, err := p.Design()
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	if k == nil {
		t.Fatal("expected a gain")
	}
	for _, pole := range poles {
		if real(pole) >= 0 {
			t.Errorf("lqr closed loop must be stable, got pole %v", pole)
		}
	}
}

func TestPipelineUnknownMethod(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ident.Method = "subspace"
	p := New(cfg, discard())
	d, err := p.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.Identify(d); err == nil {
		t.Error("expected error for unknown ident method")
	}

	cfg.Design.Method = "hinf"
	if _, _, err := p.Design(); err == nil {
		t.Error("expected error for unknown design method")
	}
}
