package particles

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Sink is a surface that removes particles hitting it.
type Sink interface {
	// AbsorptionTimes returns, for each particle moving on a straight line
	// from x[i] with velocity v[i], the time at which it hits the surface.
	// Particles that do not hit the surface within [0, dt) get a time
	// greater than dt or a negative time.
	AbsorptionTimes(x, v []r3.Vec, dt float64) []float64

	// AbsorbPtcls is called with the particles this sink absorbed.
	AbsorbPtcls(x, v []r3.Vec, dt float64)
}

// NullSink never absorbs.
type NullSink struct{}

func (NullSink) AbsorptionTimes(x, _ []r3.Vec, dt float64) []float64 {
	taus := make([]float64, len(x))
	for i := range taus {
		taus[i] = 2 * dt
	}
	return taus
}

func (NullSink) AbsorbPtcls([]r3.Vec, []r3.Vec, float64) {}

// SinkPlane absorbs particles crossing the infinite plane through Point
// with normal Normal. Normal does not need unit length, its magnitude cancels
// in the absorption time.
type SinkPlane struct {
	Point  r3.Vec
	Normal r3.Vec

	absorbed int
}

// NewSinkPlane returns a plane sink. The normal must be non-zero.
func NewSinkPlane(point, normal r3.Vec) (*SinkPlane, error) {
	if normal == (r3.Vec{}) {
		return nil, ErrDegenerateNormal
	}
	return &SinkPlane{Point: point, Normal: normal}, nil
}

// AbsorptionTimes returns n.(p - x) / n.v for every particle. Particles
// moving parallel to the plane get 2*dt. Negative times mean the particle
// already crossed the plane.
func (s *SinkPlane) AbsorptionTimes(x, v []r3.Vec, dt float64) []float64 {
	taus := make([]float64, len(x))
	for i := range x {
		nv := r3.Dot(s.Normal, v[i])
		if nv == 0 {
			taus[i] = 2 * dt
			continue
		}
		taus[i] = r3.Dot(s.Normal, r3.Sub(s.Point, x[i])) / nv
	}
	return taus
}

func (s *SinkPlane) AbsorbPtcls(x, _ []r3.Vec, _ float64) {
	s.absorbed += len(x)
}

// Absorbed returns the number of particles absorbed so far.
func (s *SinkPlane) Absorbed() int { return s.absorbed }

// RemoveAbsorbed removes from e every particle that one of sinks absorbs
// within [0, dt) and returns the number absorbed by each sink.
//
// A particle belongs to the sink with the earliest absorption time; ties go
// to the sink listed first. Times outside [0, dt), NaN included, never
// absorb. Each sink's AbsorbPtcls sees copies of the start of step state of
// the particles it took.
func RemoveAbsorbed(dt float64, e *Ensemble, sinks ...Sink) ([]int, error) {
	counts := make([]int, len(sinks))
	n := e.NumPtcls()
	if n == 0 || len(sinks) == 0 {
		return counts, nil
	}

	owner := make([]int, n)
	best := make([]float64, n)
	for i := range owner {
		owner[i] = -1
	}

	x, v := e.Positions(), e.Velocities()
	for j, s := range sinks {
		taus := s.AbsorptionTimes(x, v, dt)
		if len(taus) != n {
			return nil, &PropertyError{Key: "absorption time", Got: len(taus), Want: n}
		}
		for i, tau := range taus {
			if !(tau >= 0 && tau < dt) {
				continue
			}
			if owner[i] == -1 || tau < best[i] {
				owner[i], best[i] = j, tau
			}
		}
	}

	keep := make([]bool, n)
	absorbedX := make([][]r3.Vec, len(sinks))
	absorbedV := make([][]r3.Vec, len(sinks))
	removed := 0
	for i, j := range owner {
		if j == -1 {
			keep[i] = true
			continue
		}
		counts[j]++
		removed++
		absorbedX[j] = append(absorbedX[j], x[i])
		absorbedV[j] = append(absorbedV[j], v[i])
	}
	if removed == 0 {
		return counts, nil
	}

	for j, s := range sinks {
		if counts[j] > 0 {
			s.AbsorbPtcls(absorbedX[j], absorbedV[j], dt)
		}
	}
	return counts, e.Compact(keep)
}
