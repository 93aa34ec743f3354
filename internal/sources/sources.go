// Package sources provides particle sources for particles.InjectParticles.
package sources

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/coldsim/internal/particles"
)

var (
	_ particles.Source = (*Fixed)(nil)
	_ particles.Source = (*Beam)(nil)
)

// Fixed produces Count particles per step, all at Origin moving with
// Velocity. Mass is handled as for Beam.
type Fixed struct {
	Count    int
	Origin   r3.Vec
	Velocity r3.Vec
	Mass     float64
}

func (f *Fixed) NumPtclsProduced(float64) int { return f.Count }

func (f *Fixed) ProducePtcls(_ float64, start, end int, e *particles.Ensemble) {
	x, v := e.Positions(), e.Velocities()
	for i := start; i < end; i++ {
		x[i] = f.Origin
		v[i] = f.Velocity
	}
	setMass(e, start, end, f.Mass)
}

// setMass writes mass into the "mass" particle property of rows
// [start:end] when mass is positive and the property exists.
func setMass(e *particles.Ensemble, start, end int, mass float64) {
	if mass <= 0 {
		return
	}
	if m, ok := e.ParticleProperty("mass"); ok {
		for i := start; i < end; i++ {
			m[i] = mass
		}
	}
}

// Beam is a stochastic source emitting on average Rate particles per unit
// time from Origin. Each velocity component is drawn from a normal
// distribution around Velocity with standard deviation Spread.
//
// When Mass is positive and the ensemble carries a "mass" particle property,
// the new particles' masses are set to Mass.
type Beam struct {
	Rate     float64
	Origin   r3.Vec
	Velocity r3.Vec
	Spread   float64
	Mass     float64

	src rand.Source
}

// NewBeam returns a beam drawing its random numbers from a source seeded
// with seed.
func NewBeam(rate float64, origin, velocity r3.Vec, spread float64, seed uint64) *Beam {
	return &Beam{
		Rate:     rate,
		Origin:   origin,
		Velocity: velocity,
		Spread:   spread,
		src:      rand.NewSource(seed),
	}
}

func (b *Beam) NumPtclsProduced(dt float64) int {
	lambda := b.Rate * dt
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: b.src}.Rand())
}

func (b *Beam) ProducePtcls(_ float64, start, end int, e *particles.Ensemble) {
	x, v := e.Positions(), e.Velocities()
	for i := start; i < end; i++ {
		x[i] = b.Origin
		v[i] = r3.Add(b.Velocity, b.jitter())
	}
	setMass(e, start, end, b.Mass)
}

func (b *Beam) jitter() r3.Vec {
	if b.Spread <= 0 {
		return r3.Vec{}
	}
	n := distuv.Normal{Mu: 0, Sigma: b.Spread, Src: b.src}
	return r3.Vec{X: n.Rand(), Y: n.Rand(), Z: n.Rand()}
}
