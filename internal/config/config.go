package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/huckl3b3rry87/ctrlab/internal/lti"
)

const (
	DefaultTs       = 0.01
	DefaultDuration = 5.0
	DefaultDt       = 0.001
	DefaultOrderA   = 2
	DefaultOrderB   = 2
	DefaultDelay    = 1
	DefaultSplit    = 0.7
	DefaultZeta     = 0.7
	DefaultWn       = 8.0
)

type Config struct {
	Model      string        `yaml:"model"`
	Integrator string        `yaml:"integrator"`
	Signal     string        `yaml:"signal"`
	Ts         float64       `yaml:"ts"`
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	Seed       int64         `yaml:"seed"`
	Noise      float64       `yaml:"noise"`
	Motor      MotorConfig   `yaml:"motor"`
	SignalOpts SignalConfig  `yaml:"signal_opts"`
	Ident      IdentConfig   `yaml:"ident"`
	Design     DesignConfig  `yaml:"design"`
	Controller ControlConfig `yaml:"controller"`
}

type MotorConfig struct {
	R  float64 `yaml:"r"`
	L  float64 `yaml:"l"`
	Kt float64 `yaml:"kt"`
	Ke float64 `yaml:"ke"`
	J  float64 `yaml:"j"`
	B  float64 `yaml:"b"`
}

type SignalConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Delay     float64 `yaml:"delay"`
	Frequency float64 `yaml:"frequency"`
	BitPeriod float64 `yaml:"bit_period"`
}

type IdentConfig struct {
	Method string  `yaml:"method"`
	NA     int     `yaml:"na"`
	NB     int     `yaml:"nb"`
	Delay  int     `yaml:"delay"`
	Split  float64 `yaml:"split"`
}

type DesignConfig struct {
	Method string    `yaml:"method"`
	Zeta   float64   `yaml:"zeta"`
	Wn     float64   `yaml:"wn"`
	Q      []float64 `yaml:"q"`
	R      []float64 `yaml:"r"`
}

type ControlConfig struct {
	Kind   string  `yaml:"kind"`
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	m := lti.DefaultMotorParams()
	return &Config{
		Model:      "motor_speed",
		Integrator: "rk4",
		Signal:     "prbs",
		Ts:         DefaultTs,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Seed:       1,
		Motor: MotorConfig{
			R: m.R, L: m.L, Kt: m.Kt, Ke: m.Ke, J: m.J, B: m.B,
		},
		SignalOpts: SignalConfig{
			Amplitude: 1.0,
			BitPeriod: 0.05,
			Frequency: 1.0,
		},
		Ident: IdentConfig{
			Method: "oe",
			NA:     DefaultOrderA,
			NB:     DefaultOrderB,
			Delay:  DefaultDelay,
			Split:  DefaultSplit,
		},
		Design: DesignConfig{
			Method: "place",
			Zeta:   DefaultZeta,
			Wn:     DefaultWn,
		},
		Controller: ControlConfig{
			Kind: "none",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Ts <= 0 {
		return fmt.Errorf("config: ts must be positive, got %g", c.Ts)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Ident.NA < 0 || c.Ident.NB < 1 || c.Ident.Delay < 0 {
		return fmt.Errorf("config: model orders na=%d nb=%d delay=%d out of range",
			c.Ident.NA, c.Ident.NB, c.Ident.Delay)
	}
	if c.Ident.Split <= 0 || c.Ident.Split >= 1 {
		return fmt.Errorf("config: split must lie in (0, 1), got %g", c.Ident.Split)
	}
	return nil
}

// MotorParams converts the motor section to the physical parameter set.
func (c *Config) MotorParams() lti.MotorParams {
	return lti.MotorParams{
		R: c.Motor.R, L: c.Motor.L,
		Kt: c.Motor.Kt, Ke: c.Motor.Ke,
		J: c.Motor.J, B: c.Motor.B,
	}
}
