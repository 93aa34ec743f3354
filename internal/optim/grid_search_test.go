package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
)

func beamConfig() *config.Config {
	cfg := config.GetPreset("beam", "free")
	cfg.Duration = 1.0
	return cfg
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestGridSearch_FinalCount(t *testing.T) {
	// The sink at x = 2 is out of reach within one time unit at speed 1,
	// so every injected particle survives.
	g := NewGridSearch([]string{"sources[0].count"}, [][]float64{{1, 2, 3}}).Maximize()

	best, points, err := g.Search(context.Background(), beamConfig(), experiment.NewRegistry(), FinalCount)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 3.0, best.Params["sources[0].count"])
	assert.Equal(t, 300.0, best.Value)
	assert.Equal(t, 100.0, points[0].Value)
}

func TestGridSearch_Minimize(t *testing.T) {
	// Moving the sink towards the source absorbs more particles.
	g := NewGridSearch([]string{"sinks[0].offset"}, [][]float64{{0, -1.5}})

	best, points, err := g.Search(context.Background(), beamConfig(), experiment.NewRegistry(), FinalCount)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, -1.5, best.Params["sinks[0].offset"])
	assert.Less(t, points[1].Value, points[0].Value)
}

func TestGridSearch_Errors(t *testing.T) {
	reg := experiment.NewRegistry()

	_, _, err := NewGridSearch([]string{"dt"}, nil).Search(context.Background(), beamConfig(), reg, FinalCount)
	assert.Error(t, err)

	_, _, err = NewGridSearch(nil, nil).Search(context.Background(), beamConfig(), reg, FinalCount)
	assert.Error(t, err)

	_, _, err = NewGridSearch([]string{"bogus"}, [][]float64{{1}}).Search(context.Background(), beamConfig(), reg, FinalCount)
	assert.Error(t, err)
}

func TestMetricObjective(t *testing.T) {
	obj := Metric("count")
	assert.Equal(t, 7.0, obj(nil, map[string]float64{"count": 7}))
}
