package config

import "sort"

var Presets = map[string]map[string]*Config{
	"trap": {
		"loading": {
			Name: "trap/loading", Dt: 1e-3, Duration: 2.0, Seed: 1,
			Ensemble: EnsembleConfig{Mass: 1.0},
			Forces: []ForceConfig{
				{Kind: "harmonic", K: 40.0},
				{Kind: "damping", Gamma: 2.0},
			},
			Sources: []SourceConfig{
				{Kind: "beam", Rate: 500, Origin: [3]float64{-1, 0, 0}, Velocity: [3]float64{2, 0, 0}, Spread: 0.2},
			},
		},
		"leaky": {
			Name: "trap/leaky", Dt: 1e-3, Duration: 3.0, Seed: 2,
			Ensemble: EnsembleConfig{Mass: 1.0},
			Forces: []ForceConfig{
				{Kind: "harmonic", K: 10.0},
			},
			Sources: []SourceConfig{
				{Kind: "beam", Rate: 300, Origin: [3]float64{0, 0, 0}, Spread: 1.0},
			},
			Sinks: []SinkConfig{
				{Kind: "plane", Point: [3]float64{0, 0, 0.4}, Normal: [3]float64{0, 0, 1}},
				{Kind: "plane", Point: [3]float64{0, 0, -0.4}, Normal: [3]float64{0, 0, -1}},
			},
		},
	},
	"beam": {
		"free": {
			Name: "beam/free", Dt: 1e-2, Duration: 5.0,
			Ensemble: EnsembleConfig{Mass: 1.0},
			Sources: []SourceConfig{
				{Kind: "fixed", Count: 2, Origin: [3]float64{-0.005, 0, 0}, Velocity: [3]float64{1, 0, 0}},
			},
			Sinks: []SinkConfig{
				{Kind: "plane", Point: [3]float64{2, 0, 0}, Normal: [3]float64{1, 0, 0}},
			},
		},
		"gravity": {
			Name: "beam/gravity", Dt: 1e-3, Duration: 1.5, Seed: 3,
			Ensemble: EnsembleConfig{Mass: 1.0, PerParticleMass: true},
			Forces: []ForceConfig{
				{Kind: "uniform", Vector: [3]float64{0, 0, -9.81}},
			},
			Sources: []SourceConfig{
				{Kind: "beam", Rate: 200, Velocity: [3]float64{1, 0, 3}, Spread: 0.1, Mass: 1.0},
			},
			Sinks: []SinkConfig{
				{Kind: "plane", Point: [3]float64{0, 0, -1}, Normal: [3]float64{0, 0, -1}},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Forces = append([]ForceConfig(nil), cfg.Forces...)
	c.Sources = append([]SourceConfig(nil), cfg.Sources...)
	c.Sinks = append([]SinkConfig(nil), cfg.Sinks...)
	return &c
}

// ListPresets returns the sorted preset names of a group.
func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListGroups returns the sorted preset group names.
func ListGroups() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
