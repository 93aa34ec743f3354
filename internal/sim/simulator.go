package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/coldsim/internal/particles"
)

// Simulator drives an ensemble through repeated inject, absorb and push
// steps.
type Simulator struct {
	sources   []particles.Source
	sinks     []particles.Sink
	forces    []particles.Force
	pusher    *particles.Pusher
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(sources []particles.Source, sinks []particles.Sink, forces []particles.Force) *Simulator {
	return &Simulator{
		sources:   sources,
		sinks:     sinks,
		forces:    forces,
		pusher:    particles.NewPusher(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) Sinks() []particles.Sink { return s.sinks }

// Step advances e by dt starting at time t. Sources inject first, then
// sinks remove the particles they absorb during the step and finally the
// survivors are pushed.
func (s *Simulator) Step(e *particles.Ensemble, t, dt float64) (StepRecord, error) {
	rec := StepRecord{Time: t + dt}

	injected, err := particles.InjectParticles(dt, e, s.sources...)
	if err != nil {
		return rec, fmt.Errorf("inject: %w", err)
	}
	rec.Injected = injected

	absorbed, err := particles.RemoveAbsorbed(dt, e, s.sinks...)
	if err != nil {
		return rec, fmt.Errorf("absorb: %w", err)
	}
	rec.Absorbed = absorbed

	if err := s.pusher.Step(dt, e, s.forces...); err != nil {
		return rec, fmt.Errorf("push: %w", err)
	}
	rec.Count = e.NumPtcls()
	return rec, nil
}

// Run integrates e in place for cfg.Duration. On cancellation the partial
// result is returned together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, e *particles.Ensemble, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Times:     make([]float64, 0, steps+1),
		Counts:    make([]int, 0, steps+1),
		Injected:  make([]int, 0, steps+1),
		Absorbed:  make([]int, 0, steps+1),
		Series:    make(map[string][]float64),
		Metrics:   make(map[string]float64),
		Snapshots: make([]Snapshot, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	s.record(result, e, StepRecord{Time: t, Count: e.NumPtcls()})
	if cfg.SnapshotEvery > 0 {
		result.Snapshots = append(result.Snapshots, Snapshot{Time: t, Ensemble: e.Clone()})
	}

	s.logger.Info("run started", "steps", steps, "dt", cfg.Dt, "particles", e.NumPtcls())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.logger.Warn("run canceled", "step", i, "t", t)
			return result, ctx.Err()
		default:
		}

		rec, err := s.Step(e, t, cfg.Dt)
		if err != nil {
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		rec.Step = i
		t = rec.Time
		result.StepsTaken++

		s.record(result, e, rec)
		for _, obs := range s.observers {
			obs.OnStep(e, rec)
		}
		if cfg.SnapshotEvery > 0 && (i+1)%cfg.SnapshotEvery == 0 {
			result.Snapshots = append(result.Snapshots, Snapshot{Time: t, Ensemble: e.Clone()})
		}

		if rec.Injected > 0 || rec.TotalAbsorbed() > 0 {
			s.logger.Debug("step", "i", i, "t", t, "injected", rec.Injected, "absorbed", rec.Absorbed, "particles", rec.Count)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run finished",
		"steps", result.StepsTaken,
		"particles", e.NumPtcls(),
		"injected", result.TotalInjected,
		"absorbed", result.TotalAbsorbed,
	)
	return result, nil
}

func (s *Simulator) record(result *Result, e *particles.Ensemble, rec StepRecord) {
	absorbed := rec.TotalAbsorbed()
	result.Times = append(result.Times, rec.Time)
	result.Counts = append(result.Counts, rec.Count)
	result.Injected = append(result.Injected, rec.Injected)
	result.Absorbed = append(result.Absorbed, absorbed)
	result.TotalInjected += rec.Injected
	result.TotalAbsorbed += absorbed

	for _, m := range s.metrics {
		m.Observe(e, rec.Time)
		result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot interval must not be negative, got %d", cfg.SnapshotEvery)
	}
	return nil
}
