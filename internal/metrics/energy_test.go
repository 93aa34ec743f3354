package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
)

var (
	_ sim.Metric = (*KineticEnergy)(nil)
	_ sim.Metric = (*EnergyDrift)(nil)
	_ sim.Metric = (*Count)(nil)
	_ sim.Metric = (*MeanSpeed)(nil)
	_ sim.Metric = (*Escaped)(nil)
)

func TestKineticEnergy(t *testing.T) {
	e := particles.NewEnsemble(2)
	e.Velocities()[0] = r3.Vec{X: 1}
	e.Velocities()[1] = r3.Vec{Y: 2}

	k := NewKineticEnergy()
	k.Observe(e, 0)
	assert.Zero(t, k.Value(), "no mass, no energy")

	require.NoError(t, e.SetParticleProperty("mass", []float64{2, 1}))
	k.Observe(e, 0)
	assert.InDelta(t, 1+2, k.Value(), 1e-12)

	e.SetEnsembleProperty("mass", 4)
	k.Observe(e, 0)
	assert.InDelta(t, 2+8, k.Value(), 1e-12, "ensemble mass takes precedence")

	k.Reset()
	assert.Zero(t, k.Value())
}

func TestEnergyDrift(t *testing.T) {
	energy := 10.0
	d := NewEnergyDrift(func(*particles.Ensemble) float64 { return energy })
	e := particles.New()

	d.Observe(e, 0)
	energy = 11
	d.Observe(e, 1)
	energy = 9.5
	d.Observe(e, 2)

	assert.InDelta(t, 0.1, d.Value(), 1e-12)
	d.Reset()
	assert.Zero(t, d.Value())
}

func TestTotalKineticEnergy(t *testing.T) {
	e := particles.NewEnsemble(2)
	e.Velocities()[0] = r3.Vec{X: 3}
	assert.Zero(t, TotalKineticEnergy(e))

	e.SetEnsembleProperty("mass", 2)
	assert.InDelta(t, 9, TotalKineticEnergy(e), 1e-12)
}
