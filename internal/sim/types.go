package sim

import (
	"fmt"

	"github.com/san-kum/coldsim/internal/particles"
)

// Metric accumulates a scalar quantity from the ensemble after every step.
type Metric interface {
	Name() string
	Observe(e *particles.Ensemble, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(e *particles.Ensemble, rec StepRecord)
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	SnapshotEvery int
}

// Steps returns the number of whole steps of length Dt that fit in
// Duration, tolerating round-off in the ratio.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

func DefaultConfig() Config {
	return Config{
		Dt:       1e-3,
		Duration: 1.0,
	}
}

// StepRecord describes what happened to the ensemble during one step.
type StepRecord struct {
	Step     int
	Time     float64
	Count    int
	Injected int
	Absorbed []int
}

// TotalAbsorbed sums the per sink absorption counts.
func (r StepRecord) TotalAbsorbed() int {
	n := 0
	for _, c := range r.Absorbed {
		n += c
	}
	return n
}

// Snapshot is a deep copy of the ensemble at a given time.
type Snapshot struct {
	Time     float64
	Ensemble *particles.Ensemble
}

// Result holds one entry per recorded time, starting with the initial state
// at t = 0.
type Result struct {
	Times     []float64
	Counts    []int
	Injected  []int
	Absorbed  []int
	Series    map[string][]float64
	Metrics   map[string]float64
	Snapshots []Snapshot

	StepsTaken    int
	TotalInjected int
	TotalAbsorbed int
}

// StepError wraps a failure of a single step with its position in the run.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
