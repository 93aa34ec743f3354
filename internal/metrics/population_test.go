package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

func TestCount(t *testing.T) {
	c := NewCount()
	c.Observe(particles.NewEnsemble(7), 0)
	assert.Equal(t, 7.0, c.Value())
	c.Reset()
	assert.Zero(t, c.Value())
}

func TestMeanSpeed(t *testing.T) {
	m := NewMeanSpeed()
	m.Observe(particles.NewEnsemble(0), 0)
	assert.Zero(t, m.Value())

	e := particles.NewEnsemble(2)
	e.Velocities()[0] = r3.Vec{X: 3, Y: 4}
	e.Velocities()[1] = r3.Vec{Z: 1}
	m.Observe(e, 0)
	assert.InDelta(t, 3.0, m.Value(), 1e-12)
}

func TestEscaped(t *testing.T) {
	e := particles.NewEnsemble(3)
	e.Positions()[0] = r3.Vec{X: 0.5}
	e.Positions()[1] = r3.Vec{X: 2}
	e.Positions()[2] = r3.Vec{Y: -3}

	s := NewEscaped(r3.Vec{}, 1)
	s.Observe(e, 0)
	assert.Equal(t, 2.0, s.Value())
}
