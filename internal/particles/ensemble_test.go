package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func seeded(n int) *Ensemble {
	e := NewEnsemble(n)
	for i := 0; i < n; i++ {
		f := float64(i + 1)
		e.Positions()[i] = r3.Vec{X: f, Y: 2 * f, Z: 3 * f}
		e.Velocities()[i] = r3.Vec{X: -f, Y: 0.5 * f, Z: f * f}
	}
	return e
}

func TestNew_DefaultsToOneParticleAtRest(t *testing.T) {
	e := New()
	require.Equal(t, 1, e.NumPtcls())
	assert.Equal(t, r3.Vec{}, e.Positions()[0])
	assert.Equal(t, r3.Vec{}, e.Velocities()[0])
	assert.Empty(t, e.ParticlePropertyKeys())
}

func TestNewEnsemble_NegativeSizeIsEmpty(t *testing.T) {
	assert.Equal(t, 0, NewEnsemble(-3).NumPtcls())
}

func TestResize_RoundTripPreservesPrefix(t *testing.T) {
	tests := []struct {
		name string
		n, m int
	}{
		{"shrink then grow", 5, 2},
		{"grow then shrink", 3, 8},
		{"to empty", 4, 0},
		{"from empty", 0, 3},
		{"same size", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := seeded(tt.n)
			before := e.Clone()

			require.NoError(t, e.Resize(tt.m))
			require.NoError(t, e.Resize(tt.n))

			keep := min(tt.n, tt.m)
			require.Equal(t, tt.n, e.NumPtcls())
			assert.Equal(t, before.Positions()[:keep], e.Positions()[:keep])
			assert.Equal(t, before.Velocities()[:keep], e.Velocities()[:keep])
			for i := keep; i < tt.n; i++ {
				assert.Equal(t, r3.Vec{}, e.Positions()[i], "row %d not zeroed", i)
				assert.Equal(t, r3.Vec{}, e.Velocities()[i], "row %d not zeroed", i)
			}
		})
	}
}

func TestResize_Negative(t *testing.T) {
	e := seeded(2)
	require.ErrorIs(t, e.Resize(-1), ErrNegativeSize)
	assert.Equal(t, 2, e.NumPtcls())
}

func TestResize_ReallocatesViews(t *testing.T) {
	e := seeded(3)
	stale := e.Positions()

	require.NoError(t, e.Resize(4))
	e.Positions()[0] = r3.Vec{X: 42}

	assert.Equal(t, 1.0, stale[0].X, "old view must not alias new storage")
}

func TestResize_ParticleProperties(t *testing.T) {
	e := seeded(3)
	require.NoError(t, e.SetParticleProperty("mass", []float64{1, 2, 3}))
	require.NoError(t, e.SetParticleVectorProperty("dipole", []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}))

	require.NoError(t, e.Resize(5))
	mass, ok := e.ParticleProperty("mass")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, mass)
	dipole, ok := e.ParticleVectorProperty("dipole")
	require.True(t, ok)
	assert.Len(t, dipole, 5)
	assert.Equal(t, r3.Vec{Z: 1}, dipole[2])

	require.NoError(t, e.Resize(1))
	mass, _ = e.ParticleProperty("mass")
	assert.Equal(t, []float64{1}, mass)
	dipole, _ = e.ParticleVectorProperty("dipole")
	assert.Len(t, dipole, 1)
}

func TestSetParticleProperty_DimensionMismatch(t *testing.T) {
	e := seeded(3)

	err := e.SetParticleProperty("charge", []float64{1, 2})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	var pe *PropertyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "charge", pe.Key)
	assert.Equal(t, 2, pe.Got)
	assert.Equal(t, 3, pe.Want)

	require.ErrorIs(t, e.SetParticleVectorProperty("spin", make([]r3.Vec, 4)), ErrDimensionMismatch)
	assert.Empty(t, e.ParticlePropertyKeys())
}

func TestSetParticleProperty_CopiesCallerBuffer(t *testing.T) {
	e := seeded(3)
	charge := []float64{1, 2, 3}
	require.NoError(t, e.SetParticleProperty("charge", charge))

	charge[0] = 99
	got, _ := e.ParticleProperty("charge")
	assert.Equal(t, 1.0, got[0])

	spin := []r3.Vec{{X: 1}, {X: 2}, {X: 3}}
	require.NoError(t, e.SetParticleVectorProperty("spin", spin))
	spin[1].X = 99
	gotSpin, _ := e.ParticleVectorProperty("spin")
	assert.Equal(t, 2.0, gotSpin[1].X)
}

func TestSetParticleProperty_ReplacesOtherShape(t *testing.T) {
	e := seeded(2)
	require.NoError(t, e.SetParticleProperty("q", []float64{1, 2}))
	require.NoError(t, e.SetParticleVectorProperty("q", []r3.Vec{{}, {}}))

	_, ok := e.ParticleProperty("q")
	assert.False(t, ok)
	assert.Equal(t, []string{"q"}, e.ParticlePropertyKeys())

	e.DeleteParticleProperty("q")
	assert.Empty(t, e.ParticlePropertyKeys())
}

func TestEnsembleProperty_Copies(t *testing.T) {
	e := New()
	vals := []float64{1, 2, 3}
	e.SetEnsembleProperty("b", vals...)
	vals[0] = 7

	got, ok := e.EnsembleProperty("b")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, got)

	e.DeleteEnsembleProperty("b")
	_, ok = e.EnsembleProperty("b")
	assert.False(t, ok)
}

func TestCompact(t *testing.T) {
	e := seeded(4)
	require.NoError(t, e.SetParticleProperty("id", []float64{0, 1, 2, 3}))

	require.NoError(t, e.Compact([]bool{true, false, true, false}))

	require.Equal(t, 2, e.NumPtcls())
	assert.Equal(t, 1.0, e.Positions()[0].X)
	assert.Equal(t, 3.0, e.Positions()[1].X)
	ids, _ := e.ParticleProperty("id")
	assert.Equal(t, []float64{0, 2}, ids)

	require.ErrorIs(t, e.Compact([]bool{true}), ErrDimensionMismatch)
}

func TestClone_IsDeep(t *testing.T) {
	e := seeded(2)
	e.SetEnsembleProperty("mass", 1)
	require.NoError(t, e.SetParticleProperty("q", []float64{1, 1}))

	c := e.Clone()
	c.Positions()[0].X = 100
	q, _ := c.ParticleProperty("q")
	q[0] = 100

	assert.Equal(t, 1.0, e.Positions()[0].X)
	orig, _ := e.ParticleProperty("q")
	assert.Equal(t, 1.0, orig[0])
}
