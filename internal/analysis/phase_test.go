package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

func TestParseAxis(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Axis
	}{{"x", AxisX}, {"Y", AxisY}, {"z", AxisZ}} {
		got, err := ParseAxis(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, strings.ToLower(tc.in), got.String())
	}

	_, err := ParseAxis("w")
	assert.Error(t, err)
}

func TestPhasePortrait(t *testing.T) {
	e := particles.NewEnsemble(2)
	x, v := e.Positions(), e.Velocities()
	x[0], v[0] = r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 4, Y: 5, Z: 6}
	x[1], v[1] = r3.Vec{X: -1, Y: -2, Z: -3}, r3.Vec{X: -4, Y: -5, Z: -6}

	p := PhasePortrait(e, AxisZ)
	assert.Equal(t, []float64{3, -3}, p.X)
	assert.Equal(t, []float64{6, -6}, p.V)
}

func TestComputeMoments_CorrelatedHasZeroEmittance(t *testing.T) {
	e := particles.NewEnsemble(5)
	x, v := e.Positions(), e.Velocities()
	for i := range x {
		x[i].X = float64(i)
		v[i].X = 2 * float64(i)
	}

	m, err := ComputeMoments(e, AxisX)
	require.NoError(t, err)
	assert.Equal(t, 5, m.N)
	assert.InDelta(t, 2.0, m.MeanX, 1e-12)
	assert.InDelta(t, 4.0, m.MeanV, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), m.RMSX, 1e-12)
	assert.InDelta(t, 0.0, m.Emittance, 1e-9)
}

func TestComputeMoments_Uncorrelated(t *testing.T) {
	e := particles.NewEnsemble(4)
	x, v := e.Positions(), e.Velocities()
	x[0], v[0] = r3.Vec{X: 1}, r3.Vec{X: 1}
	x[1], v[1] = r3.Vec{X: 1}, r3.Vec{X: -1}
	x[2], v[2] = r3.Vec{X: -1}, r3.Vec{X: 1}
	x[3], v[3] = r3.Vec{X: -1}, r3.Vec{X: -1}

	m, err := ComputeMoments(e, AxisX)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, m.CovXV, 1e-12)
	// sample variance of {1,1,-1,-1} is 4/3
	assert.InDelta(t, 4.0/3.0, m.Emittance, 1e-12)
}

func TestComputeMoments_TooFew(t *testing.T) {
	_, err := ComputeMoments(particles.NewEnsemble(1), AxisX)
	assert.ErrorIs(t, err, ErrTooFewPtcls)
}

func TestPhasePortraitToASCII(t *testing.T) {
	assert.Empty(t, PhasePortraitToASCII(nil, 10, 5))

	p := &PhasePortrait2D{X: []float64{-1, 1}, V: []float64{-1, 1}}
	out := PhasePortraitToASCII(p, 21, 11)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, 2, strings.Count(out, "•"))
	assert.Contains(t, out, "│")
	assert.Contains(t, out, "─")
}
