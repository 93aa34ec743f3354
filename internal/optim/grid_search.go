// Package optim sweeps scenario parameters over a grid.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/coldsim/internal/config"
	"github.com/san-kum/coldsim/internal/experiment"
)

// Objective reduces a finished experiment to the value being optimized.
type Objective func(exp *experiment.Experiment, metrics map[string]float64) float64

// Metric returns an objective reading a final metric by name.
func Metric(name string) Objective {
	return func(_ *experiment.Experiment, metrics map[string]float64) float64 {
		return metrics[name]
	}
}

// FinalCount is the number of particles left at the end of the run.
func FinalCount(exp *experiment.Experiment, _ map[string]float64) float64 {
	return float64(exp.Ensemble().NumPtcls())
}

type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: 4}
}

// Maximize makes Search return the largest objective instead of the
// smallest.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Search runs base once for every grid point and returns the best point
// and all evaluated points in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, reg *experiment.Registry, obj Objective) (Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Point{}, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if len(g.paramNames) == 0 {
		return Point{}, nil, errors.New("optim: no parameters to search")
	}

	grid := make([]map[string]float64, 0)
	g.collect(0, map[string]float64{}, &grid)

	points := make([]Point, len(grid))
	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range grid {
		eg.Go(func() error {
			val, err := evaluate(ctx, base, reg, params, obj)
			if err != nil {
				return fmt.Errorf("optim: point %v: %w", params, err)
			}
			mu.Lock()
			points[i] = Point{Params: params, Value: val}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, nil, err
	}

	best := Point{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	for _, p := range points {
		if (g.maximize && p.Value > best.Value) || (!g.maximize && p.Value < best.Value) {
			best = p
		}
	}
	return best, points, nil
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.collect(depth+1, newParams, out)
	}
}

func evaluate(ctx context.Context, base *config.Config, reg *experiment.Registry, params map[string]float64, obj Objective) (float64, error) {
	cfg := *base
	cfg.Forces = append([]config.ForceConfig(nil), base.Forces...)
	cfg.Sources = append([]config.SourceConfig(nil), base.Sources...)
	cfg.Sinks = append([]config.SinkConfig(nil), base.Sinks...)
	for name, val := range params {
		if err := cfg.SetParam(name, val); err != nil {
			return 0, err
		}
	}

	exp, err := experiment.New(&cfg, reg)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	return obj(exp, result.Metrics), nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
