package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
)

func TestParticlesSVG(t *testing.T) {
	assert.Empty(t, ParticlesSVG(particles.NewEnsemble(0), 100, 100))

	e := particles.NewEnsemble(3)
	x := e.Positions()
	x[0] = r3.Vec{X: 0, Z: 0}
	x[1] = r3.Vec{X: 1, Z: 1}
	x[2] = r3.Vec{X: 1, Z: 0}

	out := ParticlesSVG(e, 200, 100)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, `width="200" height="100"`)
	assert.True(t, strings.HasSuffix(out, "</svg>"))
}

func TestParticlesSVG_SinglePoint(t *testing.T) {
	e := particles.NewEnsemble(1)
	out := ParticlesSVG(e, 100, 100)
	assert.Contains(t, out, `<circle cx="50.0" cy="50.0"`)
}

func TestSeriesSVG(t *testing.T) {
	assert.Empty(t, SeriesSVG([]float64{0}, []float64{1}, 100, 100, "#fff"))
	assert.Empty(t, SeriesSVG([]float64{0, 1}, []float64{1}, 100, 100, "#fff"))

	out := SeriesSVG([]float64{0, 1, 2}, []float64{0, 4, 2}, 120, 60, "#00ccff")
	assert.Contains(t, out, `stroke="#00ccff"`)
	assert.Equal(t, 2, strings.Count(out, " L"))
}
