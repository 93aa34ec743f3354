package particles

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Force is a force contribution evaluated on the current ensemble state.
// The result holds one vector per particle, index aligned with positions.
type Force interface {
	Force(e *Ensemble) []r3.Vec
}

// ForceFunc adapts a plain function to the Force interface.
type ForceFunc func(e *Ensemble) []r3.Vec

func (f ForceFunc) Force(e *Ensemble) []r3.Vec { return f(e) }

// Pusher advances ensembles with a drift-kick-drift step. It keeps a scratch
// force buffer between steps; a Pusher must not be shared between goroutines.
type Pusher struct {
	total []r3.Vec
}

func NewPusher() *Pusher {
	return &Pusher{}
}

func (p *Pusher) ensureScratch(n int) {
	if cap(p.total) < n {
		p.total = make([]r3.Vec, n)
	}
	p.total = p.total[:n]
	for i := range p.total {
		p.total[i] = r3.Vec{}
	}
}

// DriftKick advances e by dt using a fresh Pusher.
func DriftKick(dt float64, e *Ensemble, forces ...Force) error {
	return NewPusher().Step(dt, e, forces...)
}

// Step advances e by dt. Without forces particles drift freely. Otherwise a
// half drift is followed by a kick from the summed forces and another half
// drift.
//
// The ensemble "mass" property takes precedence over the particle "mass"
// property. When mass lookup or force evaluation fails the first half drift
// has already been applied.
func (p *Pusher) Step(dt float64, e *Ensemble, forces ...Force) error {
	x, v := e.Positions(), e.Velocities()
	if len(forces) == 0 {
		drift(x, v, dt)
		return nil
	}

	halfDt := 0.5 * dt
	drift(x, v, halfDt)

	n := e.NumPtcls()
	p.ensureScratch(n)
	for _, f := range forces {
		fi := f.Force(e)
		if len(fi) != n {
			return &PropertyError{Key: "force", Got: len(fi), Want: n}
		}
		for i := range fi {
			p.total[i] = r3.Add(p.total[i], fi[i])
		}
	}

	mass, err := resolveMass(e)
	if err != nil {
		return err
	}
	for i := range v {
		v[i] = r3.Add(v[i], r3.Scale(dt/mass(i), p.total[i]))
	}

	drift(x, v, halfDt)
	return nil
}

func drift(x, v []r3.Vec, dt float64) {
	for i := range x {
		x[i] = r3.Add(x[i], r3.Scale(dt, v[i]))
	}
}

// resolveMass returns the mass of particle i. A scalar ensemble mass is
// broadcast to all particles; a per particle ensemble mass must have one
// entry per particle.
func resolveMass(e *Ensemble) (func(i int) float64, error) {
	n := e.NumPtcls()
	if m, ok := e.EnsembleProperty("mass"); ok {
		switch len(m) {
		case 1:
			mass := m[0]
			return func(int) float64 { return mass }, nil
		case n:
			return func(i int) float64 { return m[i] }, nil
		default:
			return nil, &PropertyError{Key: "mass", Got: len(m), Want: n}
		}
	}
	if m, ok := e.ParticleProperty("mass"); ok {
		return func(i int) float64 { return m[i] }, nil
	}
	return nil, ErrMissingMass
}
