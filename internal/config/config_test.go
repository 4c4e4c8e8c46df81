package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "motor_speed" {
		t.Errorf("expected model motor_speed, got %s", cfg.Model)
	}
	if cfg.Ts <= 0 {
		t.Error("ts should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadOrders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ident.NB = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for nb=0")
	}

	cfg = DefaultConfig()
	cfg.Ident.Split = 1.0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for split=1")
	}

	cfg = DefaultConfig()
	cfg.Ts = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for ts=0")
	}
}

func TestPreset(t *testing.T) {
	cfg := Preset("motor_speed", "ident")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Signal != "prbs" {
		t.Errorf("expected prbs signal, got %s", cfg.Signal)
	}
	if cfg.SignalOpts.Amplitude != 2.0 {
		t.Errorf("expected amplitude 2.0, got %f", cfg.SignalOpts.Amplitude)
	}
	// Merged over defaults: untouched sections keep their values.
	if cfg.Motor.R != DefaultConfig().Motor.R {
		t.Error("preset should inherit default motor parameters")
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected default integrator rk4, got %s", cfg.Integrator)
	}
}

func TestPreset_NotFound(t *testing.T) {
	if cfg := Preset("motor_speed", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := Preset("nonexistent", "ident"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("motor_position")
	if len(presets) == 0 {
		t.Error("expected presets for motor_position")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctrlab.yaml")
	cfg := Preset("motor_position", "lqr")
	cfg.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Model != "motor_position" || loaded.Seed != 42 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Design.Q) != 3 {
		t.Errorf("expected 3 lqr weights, got %d", len(loaded.Design.Q))
	}
}

func TestMotorParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Motor.R = 2.5
	p := cfg.MotorParams()
	if p.R != 2.5 {
		t.Errorf("expected R 2.5, got %f", p.R)
	}
}
