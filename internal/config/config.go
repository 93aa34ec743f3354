package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1e-3
	DefaultDuration = 1.0
	DefaultMass     = 1.0
	DefaultNumPtcls = 0
)

// Config describes a complete scenario: time stepping, the initial
// ensemble and the forces, sources and sinks acting on it.
type Config struct {
	Name          string         `yaml:"name"`
	Dt            float64        `yaml:"dt"`
	Duration      float64        `yaml:"duration"`
	Seed          int64          `yaml:"seed"`
	SnapshotEvery int            `yaml:"snapshot_every"`
	Ensemble      EnsembleConfig `yaml:"ensemble"`
	Forces        []ForceConfig  `yaml:"forces"`
	Sources       []SourceConfig `yaml:"sources"`
	Sinks         []SinkConfig   `yaml:"sinks"`
	Escape        EscapeConfig   `yaml:"escape"`
}

type EnsembleConfig struct {
	NumPtcls int     `yaml:"num_ptcls"`
	Mass     float64 `yaml:"mass"`
	// PerParticleMass stores the mass as a particle property instead of an
	// ensemble property, so sources may vary it.
	PerParticleMass bool `yaml:"per_particle_mass"`

	// Initial particles start at Position moving with Velocity, each
	// component jittered by a normal deviate of the given spread.
	Position       [3]float64 `yaml:"position,flow"`
	Velocity       [3]float64 `yaml:"velocity,flow"`
	PositionSpread float64    `yaml:"position_spread"`
	VelocitySpread float64    `yaml:"velocity_spread"`
}

// EscapeConfig enables the "escaped" metric counting particles farther
// than Radius from Center. A zero radius disables it.
type EscapeConfig struct {
	Center [3]float64 `yaml:"center,flow"`
	Radius float64    `yaml:"radius"`
}

// ForceConfig selects a force by Kind: "uniform", "harmonic" or "damping".
type ForceConfig struct {
	Kind   string     `yaml:"kind"`
	Vector [3]float64 `yaml:"vector,flow"`
	Center [3]float64 `yaml:"center,flow"`
	K      float64    `yaml:"k"`
	Gamma  float64    `yaml:"gamma"`
}

// SourceConfig selects a source by Kind: "fixed" or "beam". With
// per_particle_mass a zero Mass falls back to the ensemble mass.
type SourceConfig struct {
	Kind     string     `yaml:"kind"`
	Count    int        `yaml:"count"`
	Rate     float64    `yaml:"rate"`
	Origin   [3]float64 `yaml:"origin,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
	Spread   float64    `yaml:"spread"`
	Mass     float64    `yaml:"mass"`
}

// SinkConfig selects a sink by Kind: "plane".
type SinkConfig struct {
	Kind   string     `yaml:"kind"`
	Point  [3]float64 `yaml:"point,flow"`
	Normal [3]float64 `yaml:"normal,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "custom",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Ensemble: EnsembleConfig{
			NumPtcls: DefaultNumPtcls,
			Mass:     DefaultMass,
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that would otherwise only fail mid run.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.Ensemble.NumPtcls < 0 {
		return fmt.Errorf("num_ptcls must not be negative, got %d", c.Ensemble.NumPtcls)
	}
	if len(c.Forces) > 0 && c.Ensemble.Mass <= 0 {
		return fmt.Errorf("mass must be positive when forces are present, got %g", c.Ensemble.Mass)
	}
	if c.Ensemble.PositionSpread < 0 || c.Ensemble.VelocitySpread < 0 {
		return fmt.Errorf("ensemble spreads must not be negative")
	}
	for i, s := range c.Sources {
		if s.Mass < 0 {
			return fmt.Errorf("source %d: mass must not be negative, got %g", i, s.Mass)
		}
	}
	if c.Escape.Radius < 0 {
		return fmt.Errorf("escape radius must not be negative, got %g", c.Escape.Radius)
	}
	for i, s := range c.Sinks {
		if s.Normal == [3]float64{} {
			return fmt.Errorf("sink %d: normal must be non-zero", i)
		}
	}
	return nil
}

// Steps returns the number of steps a run of this config takes.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}
