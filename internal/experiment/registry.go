package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/forces"
	"github.com/san-kum/coldsim/internal/metrics"
	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
	"github.com/san-kum/coldsim/internal/sources"
)

// Registry maps the kind names used in scenario configs to constructors.
type Registry struct {
	forces  map[string]func(config.ForceConfig) (particles.Force, error)
	sources map[string]func(config.SourceConfig, uint64) (particles.Source, error)
	sinks   map[string]func(config.SinkConfig) (particles.Sink, error)
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

func NewRegistry() *Registry {
	r := &Registry{
		forces:  make(map[string]func(config.ForceConfig) (particles.Force, error)),
		sources: make(map[string]func(config.SourceConfig, uint64) (particles.Source, error)),
		sinks:   make(map[string]func(config.SinkConfig) (particles.Sink, error)),
	}

	r.forces["uniform"] = func(c config.ForceConfig) (particles.Force, error) {
		return forces.NewUniform(vec(c.Vector)), nil
	}
	r.forces["harmonic"] = func(c config.ForceConfig) (particles.Force, error) {
		if c.K < 0 {
			return nil, fmt.Errorf("harmonic: negative spring constant %g", c.K)
		}
		return forces.NewHarmonic(vec(c.Center), c.K), nil
	}
	r.forces["damping"] = func(c config.ForceConfig) (particles.Force, error) {
		return forces.NewDamping(c.Gamma), nil
	}

	r.sources["fixed"] = func(c config.SourceConfig, _ uint64) (particles.Source, error) {
		if c.Count < 0 {
			return nil, fmt.Errorf("fixed: negative count %d", c.Count)
		}
		return &sources.Fixed{Count: c.Count, Origin: vec(c.Origin), Velocity: vec(c.Velocity), Mass: c.Mass}, nil
	}
	r.sources["beam"] = func(c config.SourceConfig, seed uint64) (particles.Source, error) {
		if c.Rate < 0 {
			return nil, fmt.Errorf("beam: negative rate %g", c.Rate)
		}
		b := sources.NewBeam(c.Rate, vec(c.Origin), vec(c.Velocity), c.Spread, seed)
		b.Mass = c.Mass
		return b, nil
	}

	r.sinks["plane"] = func(c config.SinkConfig) (particles.Sink, error) {
		return particles.NewSinkPlane(vec(c.Point), vec(c.Normal))
	}

	return r
}

func (r *Registry) GetForce(c config.ForceConfig) (particles.Force, error) {
	fn, ok := r.forces[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown force: %s", c.Kind)
	}
	return fn(c)
}

func (r *Registry) GetSource(c config.SourceConfig, seed uint64) (particles.Source, error) {
	fn, ok := r.sources[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s", c.Kind)
	}
	return fn(c, seed)
}

func (r *Registry) GetSink(c config.SinkConfig) (particles.Sink, error) {
	fn, ok := r.sinks[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown sink: %s", c.Kind)
	}
	return fn(c)
}

func (r *Registry) ListForces() []string  { return sortedKeys(r.forces) }
func (r *Registry) ListSources() []string { return sortedKeys(r.sources) }
func (r *Registry) ListSinks() []string   { return sortedKeys(r.sinks) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewCount(),
		metrics.NewKineticEnergy(),
		metrics.NewMeanSpeed(),
	}
}
