package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

// KineticEnergy reports the total kinetic energy of the ensemble at the
// last observation. Ensembles without a resolvable mass report zero.
type KineticEnergy struct {
	name    string
	current float64
	buf     []float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(e *particles.Ensemble, t float64) {
	mass, ok := massOf(e)
	if !ok {
		k.current = 0
		return
	}
	v := e.Velocities()
	if cap(k.buf) < len(v) {
		k.buf = make([]float64, len(v))
	}
	k.buf = k.buf[:len(v)]
	for i := range v {
		k.buf[i] = 0.5 * mass(i) * r3.Dot(v[i], v[i])
	}
	k.current = floats.Sum(k.buf)
}

func (k *KineticEnergy) Value() float64 { return k.current }

func (k *KineticEnergy) Reset() { k.current = 0 }

// TotalKineticEnergy returns the kinetic energy of e, or zero when e has no
// resolvable mass.
func TotalKineticEnergy(e *particles.Ensemble) float64 {
	mass, ok := massOf(e)
	if !ok {
		return 0
	}
	total := 0.0
	for i, v := range e.Velocities() {
		total += 0.5 * mass(i) * r3.Dot(v, v)
	}
	return total
}

// massOf mirrors the lookup order of the drift-kick push: ensemble mass
// first, then particle mass.
func massOf(e *particles.Ensemble) (func(int) float64, bool) {
	if m, ok := e.EnsembleProperty("mass"); ok {
		switch len(m) {
		case 1:
			return func(int) float64 { return m[0] }, true
		case e.NumPtcls():
			return func(i int) float64 { return m[i] }, true
		}
		return nil, false
	}
	if m, ok := e.ParticleProperty("mass"); ok {
		return func(i int) float64 { return m[i] }, true
	}
	return nil, false
}

// EnergyDrift tracks the largest relative change of a conserved energy
// supplied by fn since the first observation.
type EnergyDrift struct {
	name          string
	fn            func(e *particles.Ensemble) float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(fn func(e *particles.Ensemble) float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", fn: fn}
}

func (d *EnergyDrift) Name() string { return d.name }

func (d *EnergyDrift) Observe(e *particles.Ensemble, t float64) {
	energy := d.fn(e)
	if d.samples == 0 {
		d.initialEnergy = energy
	}
	d.samples++

	if d.initialEnergy != 0 {
		drift := (energy - d.initialEnergy) / d.initialEnergy
		if drift < 0 {
			drift = -drift
		}
		if drift > d.maxDrift {
			d.maxDrift = drift
		}
	}
}

func (d *EnergyDrift) Value() float64 { return d.maxDrift }

func (d *EnergyDrift) Reset() {
	d.initialEnergy = 0
	d.maxDrift = 0
	d.samples = 0
}
