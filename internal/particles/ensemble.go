package particles

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultNumPtcls is the size of an ensemble created by New.
const DefaultNumPtcls = 1

// Ensemble is a set of particles together with ensemble wide and per
// particle properties.
//
// Positions and velocities are always index aligned and every particle
// property has exactly one entry per particle once a mutation completes.
type Ensemble struct {
	x, v []r3.Vec

	ensembleProps map[string][]float64
	scalarProps   map[string][]float64
	vectorProps   map[string][]r3.Vec
}

// New returns an ensemble holding a single particle at rest at the origin.
func New() *Ensemble {
	return NewEnsemble(DefaultNumPtcls)
}

// NewEnsemble returns an ensemble of n particles at rest at the origin.
// Negative sizes are treated as zero.
func NewEnsemble(n int) *Ensemble {
	if n < 0 {
		n = 0
	}
	return &Ensemble{
		x:             make([]r3.Vec, n),
		v:             make([]r3.Vec, n),
		ensembleProps: make(map[string][]float64),
		scalarProps:   make(map[string][]float64),
		vectorProps:   make(map[string][]r3.Vec),
	}
}

// NumPtcls returns the number of particles in the ensemble.
func (e *Ensemble) NumPtcls() int { return len(e.x) }

// Positions returns the live position array. The slice is invalidated by
// Resize and Compact.
func (e *Ensemble) Positions() []r3.Vec { return e.x }

// Velocities returns the live velocity array. The slice is invalidated by
// Resize and Compact.
func (e *Ensemble) Velocities() []r3.Vec { return e.v }

// SetEnsembleProperty stores a copy of values under key. A single value is a
// scalar shared by all particles.
func (e *Ensemble) SetEnsembleProperty(key string, values ...float64) {
	e.ensembleProps[key] = append([]float64(nil), values...)
}

// EnsembleProperty returns the values stored under key.
func (e *Ensemble) EnsembleProperty(key string) ([]float64, bool) {
	p, ok := e.ensembleProps[key]
	return p, ok
}

func (e *Ensemble) DeleteEnsembleProperty(key string) {
	delete(e.ensembleProps, key)
}

// SetParticleProperty stores a copy of prop, one value per particle, under
// key. Any previous property with the same key is replaced.
func (e *Ensemble) SetParticleProperty(key string, prop []float64) error {
	if len(prop) != e.NumPtcls() {
		return &PropertyError{Key: key, Got: len(prop), Want: e.NumPtcls()}
	}
	delete(e.vectorProps, key)
	e.scalarProps[key] = append(make([]float64, 0, len(prop)), prop...)
	return nil
}

// SetParticleVectorProperty stores a copy of prop, one vector per particle,
// under key. Any previous property with the same key is replaced.
func (e *Ensemble) SetParticleVectorProperty(key string, prop []r3.Vec) error {
	if len(prop) != e.NumPtcls() {
		return &PropertyError{Key: key, Got: len(prop), Want: e.NumPtcls()}
	}
	delete(e.scalarProps, key)
	e.vectorProps[key] = append(make([]r3.Vec, 0, len(prop)), prop...)
	return nil
}

// ParticleProperty returns the live scalar property stored under key.
// Sources write the entries of freshly injected particles through it.
func (e *Ensemble) ParticleProperty(key string) ([]float64, bool) {
	p, ok := e.scalarProps[key]
	return p, ok
}

// ParticleVectorProperty returns the live vector property stored under key.
func (e *Ensemble) ParticleVectorProperty(key string) ([]r3.Vec, bool) {
	p, ok := e.vectorProps[key]
	return p, ok
}

func (e *Ensemble) DeleteParticleProperty(key string) {
	delete(e.scalarProps, key)
	delete(e.vectorProps, key)
}

// ParticlePropertyKeys returns the names of all particle properties in
// sorted order.
func (e *Ensemble) ParticlePropertyKeys() []string {
	keys := make([]string, 0, len(e.scalarProps)+len(e.vectorProps))
	for k := range e.scalarProps {
		keys = append(keys, k)
	}
	for k := range e.vectorProps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resize changes the number of particles to n. The first min(N, n)
// particles keep their state, new particles are at rest at the origin and
// their property entries are zero. Every array is reallocated.
func (e *Ensemble) Resize(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	e.x = resized(e.x, n)
	e.v = resized(e.v, n)
	for k, p := range e.scalarProps {
		e.scalarProps[k] = resized(p, n)
	}
	for k, p := range e.vectorProps {
		e.vectorProps[k] = resized(p, n)
	}
	return nil
}

func resized[T any](s []T, n int) []T {
	out := make([]T, n)
	copy(out, s)
	return out
}

// Compact removes every particle i with keep[i] == false, preserving the
// order of the survivors. keep must have one entry per particle.
func (e *Ensemble) Compact(keep []bool) error {
	if len(keep) != e.NumPtcls() {
		return &PropertyError{Key: "keep", Got: len(keep), Want: e.NumPtcls()}
	}
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	e.x = compacted(e.x, keep, n)
	e.v = compacted(e.v, keep, n)
	for k, p := range e.scalarProps {
		e.scalarProps[k] = compacted(p, keep, n)
	}
	for k, p := range e.vectorProps {
		e.vectorProps[k] = compacted(p, keep, n)
	}
	return nil
}

func compacted[T any](s []T, keep []bool, n int) []T {
	out := make([]T, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, s[i])
		}
	}
	return out
}

// Clone returns a deep copy of the ensemble.
func (e *Ensemble) Clone() *Ensemble {
	c := NewEnsemble(0)
	c.x = append(c.x, e.x...)
	c.v = append(c.v, e.v...)
	for k, p := range e.ensembleProps {
		c.ensembleProps[k] = append([]float64(nil), p...)
	}
	for k, p := range e.scalarProps {
		c.scalarProps[k] = append(make([]float64, 0, len(p)), p...)
	}
	for k, p := range e.vectorProps {
		c.vectorProps[k] = append(make([]r3.Vec, 0, len(p)), p...)
	}
	return c
}
