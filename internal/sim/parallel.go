package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/coldsim/internal/particles"
)

// BuildFunc assembles an independent simulator and ensemble for one seed.
type BuildFunc func(seed int64) (*Simulator, *particles.Ensemble, error)

// Batch runs the same scenario for several seeds concurrently. Every run
// owns its simulator and ensemble.
type Batch struct {
	build     BuildFunc
	numRuns   int
	seedStart int64
}

func NewBatch(build BuildFunc, numRuns int, seedStart int64) *Batch {
	return &Batch{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per seed, in seed order. The first failing run
// cancels the others.
func (b *Batch) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, b.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < b.numRuns; i++ {
		g.Go(func() error {
			seed := b.seedStart + int64(i)
			s, e, err := b.build(seed)
			if err != nil {
				return err
			}

			cfgCopy := cfg
			cfgCopy.Seed = seed
			results[i], err = s.Run(ctx, e, cfgCopy)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
