package experiment

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/metrics"
	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
)

// Experiment is a scenario config turned into a ready to run simulator and
// its initial ensemble.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	ensemble  *particles.Ensemble
}

// New validates cfg and builds the simulator and ensemble it describes.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, e, err := Build(cfg, reg, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, simulator: s, ensemble: e}, nil
}

// Build creates a simulator and ensemble for cfg. Stochastic sources are
// seeded from seed so that source i draws from seed+i.
func Build(cfg *config.Config, reg *Registry, seed int64) (*sim.Simulator, *particles.Ensemble, error) {
	fs := make([]particles.Force, 0, len(cfg.Forces))
	for i, fc := range cfg.Forces {
		f, err := reg.GetForce(fc)
		if err != nil {
			return nil, nil, fmt.Errorf("force %d: %w", i, err)
		}
		fs = append(fs, f)
	}

	srcs := make([]particles.Source, 0, len(cfg.Sources))
	for i, sc := range cfg.Sources {
		if cfg.Ensemble.PerParticleMass && sc.Mass <= 0 {
			sc.Mass = cfg.Ensemble.Mass
		}
		s, err := reg.GetSource(sc, uint64(seed)+uint64(i))
		if err != nil {
			return nil, nil, fmt.Errorf("source %d: %w", i, err)
		}
		srcs = append(srcs, s)
	}

	sinks := make([]particles.Sink, 0, len(cfg.Sinks))
	for i, kc := range cfg.Sinks {
		k, err := reg.GetSink(kc)
		if err != nil {
			return nil, nil, fmt.Errorf("sink %d: %w", i, err)
		}
		sinks = append(sinks, k)
	}

	e := particles.NewEnsemble(cfg.Ensemble.NumPtcls)
	initEnsemble(e, cfg.Ensemble, uint64(seed)+uint64(len(cfg.Sources)))
	if cfg.Ensemble.PerParticleMass {
		mass := make([]float64, e.NumPtcls())
		for i := range mass {
			mass[i] = cfg.Ensemble.Mass
		}
		if err := e.SetParticleProperty("mass", mass); err != nil {
			return nil, nil, err
		}
	} else if cfg.Ensemble.Mass > 0 {
		e.SetEnsembleProperty("mass", cfg.Ensemble.Mass)
	}

	s := sim.New(srcs, sinks, fs)
	for _, m := range reg.DefaultMetrics() {
		s.AddMetric(m)
	}
	for _, m := range scenarioMetrics(cfg, fs) {
		s.AddMetric(m)
	}
	return s, e, nil
}

// initEnsemble places the initial particles of e around the configured
// position and velocity.
func initEnsemble(e *particles.Ensemble, c config.EnsembleConfig, seed uint64) {
	src := rand.NewSource(seed)
	pos := distuv.Normal{Sigma: c.PositionSpread, Src: src}
	vel := distuv.Normal{Sigma: c.VelocitySpread, Src: src}
	jitter := func(n distuv.Normal) r3.Vec {
		if n.Sigma == 0 {
			return r3.Vec{}
		}
		return r3.Vec{X: n.Rand(), Y: n.Rand(), Z: n.Rand()}
	}

	x, v := e.Positions(), e.Velocities()
	for i := range x {
		x[i] = r3.Add(vec(c.Position), jitter(pos))
		v[i] = r3.Add(vec(c.Velocity), jitter(vel))
	}
}

// potential is implemented by conservative forces.
type potential interface {
	Potential(x r3.Vec) float64
}

// scenarioMetrics returns the metrics that only make sense for some
// scenarios. Energy drift is tracked for closed ensembles under
// conservative forces only, since sources, sinks and damping change the
// energy on purpose.
func scenarioMetrics(cfg *config.Config, fs []particles.Force) []sim.Metric {
	var out []sim.Metric

	if cfg.Escape.Radius > 0 {
		out = append(out, metrics.NewEscaped(vec(cfg.Escape.Center), cfg.Escape.Radius))
	}

	if len(cfg.Sources) > 0 || len(cfg.Sinks) > 0 {
		return out
	}
	pots := make([]potential, 0, len(fs))
	for _, f := range fs {
		p, ok := f.(potential)
		if !ok {
			return out
		}
		pots = append(pots, p)
	}
	energy := func(e *particles.Ensemble) float64 {
		total := metrics.TotalKineticEnergy(e)
		for _, x := range e.Positions() {
			for _, p := range pots {
				total += p.Potential(x)
			}
		}
		return total
	}
	return append(out, metrics.NewEnergyDrift(energy))
}

// SimConfig extracts the time stepping parameters of cfg.
func SimConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Seed:          cfg.Seed,
		SnapshotEvery: cfg.SnapshotEvery,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.ensemble, SimConfig(e.cfg))
}

// Batch runs the experiment for runs consecutive seeds starting at the
// config seed.
func (e *Experiment) Batch(ctx context.Context, reg *Registry, runs int) ([]*sim.Result, error) {
	build := func(seed int64) (*sim.Simulator, *particles.Ensemble, error) {
		return Build(e.cfg, reg, seed)
	}
	return sim.NewBatch(build, runs, e.cfg.Seed).Run(ctx, SimConfig(e.cfg))
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Ensemble returns the ensemble the experiment integrates in place.
func (e *Experiment) Ensemble() *particles.Ensemble {
	return e.ensemble
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
