package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

// Count reports the number of particles at the last observation.
type Count struct {
	current int
}

func NewCount() *Count { return &Count{} }

func (c *Count) Name() string { return "count" }

func (c *Count) Observe(e *particles.Ensemble, _ float64) { c.current = e.NumPtcls() }

func (c *Count) Value() float64 { return float64(c.current) }

func (c *Count) Reset() { c.current = 0 }

// MeanSpeed reports the mean particle speed at the last observation.
type MeanSpeed struct {
	current float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(e *particles.Ensemble, _ float64) {
	v := e.Velocities()
	if len(v) == 0 {
		m.current = 0
		return
	}
	sum := 0.0
	for i := range v {
		sum += r3.Norm(v[i])
	}
	m.current = sum / float64(len(v))
}

func (m *MeanSpeed) Value() float64 { return m.current }

func (m *MeanSpeed) Reset() { m.current = 0 }

// Escaped reports how many particles are farther than Radius from Center
// at the last observation.
type Escaped struct {
	Center r3.Vec
	Radius float64
	count  int
}

func NewEscaped(center r3.Vec, radius float64) *Escaped {
	return &Escaped{Center: center, Radius: radius}
}

func (s *Escaped) Name() string { return "escaped" }

func (s *Escaped) Observe(e *particles.Ensemble, _ float64) {
	s.count = 0
	r2 := s.Radius * s.Radius
	for _, x := range e.Positions() {
		d := r3.Sub(x, s.Center)
		if r3.Dot(d, d) > r2 {
			s.count++
		}
	}
}

func (s *Escaped) Value() float64 { return float64(s.count) }

func (s *Escaped) Reset() { s.count = 0 }
