// Package forces provides simple force contributions for particles.DriftKick.
package forces

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

var (
	_ particles.Force = (*Uniform)(nil)
	_ particles.Force = (*Harmonic)(nil)
	_ particles.Force = (*Damping)(nil)
)

// Uniform applies the same force F to every particle, e.g. gravity m*g.
type Uniform struct {
	F r3.Vec
}

func NewUniform(f r3.Vec) *Uniform {
	return &Uniform{F: f}
}

// Potential returns -F·x, the energy whose negative gradient is F.
func (u *Uniform) Potential(x r3.Vec) float64 {
	return -r3.Dot(u.F, x)
}

func (u *Uniform) Force(e *particles.Ensemble) []r3.Vec {
	out := make([]r3.Vec, e.NumPtcls())
	for i := range out {
		out[i] = u.F
	}
	return out
}

// Harmonic is an isotropic trap pulling particles towards Center with
// spring constant K.
type Harmonic struct {
	Center r3.Vec
	K      float64
}

func NewHarmonic(center r3.Vec, k float64) *Harmonic {
	return &Harmonic{Center: center, K: k}
}

func (h *Harmonic) Force(e *particles.Ensemble) []r3.Vec {
	x := e.Positions()
	out := make([]r3.Vec, len(x))
	for i := range x {
		out[i] = r3.Scale(-h.K, r3.Sub(x[i], h.Center))
	}
	return out
}

// Potential returns the trap energy of a particle at x.
func (h *Harmonic) Potential(x r3.Vec) float64 {
	d := r3.Sub(x, h.Center)
	return 0.5 * h.K * r3.Dot(d, d)
}

// Damping is a velocity proportional friction F = -Gamma v.
type Damping struct {
	Gamma float64
}

func NewDamping(gamma float64) *Damping {
	return &Damping{Gamma: gamma}
}

func (d *Damping) Force(e *particles.Ensemble) []r3.Vec {
	v := e.Velocities()
	out := make([]r3.Vec, len(v))
	for i := range v {
		out[i] = r3.Scale(-d.Gamma, v[i])
	}
	return out
}
