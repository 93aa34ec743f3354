package particles

// Source produces particles that are appended to an ensemble.
type Source interface {
	// NumPtclsProduced returns how many particles the next ProducePtcls call
	// for an interval of length dt will write. Stochastic sources may
	// return a different count on every call.
	NumPtclsProduced(dt float64) int

	// ProducePtcls writes end-start particles into positions and velocities
	// [start:end] of e. dt must be the interval the range was derived from.
	ProducePtcls(dt float64, start, end int, e *Ensemble)
}

// NullSource never produces particles.
type NullSource struct{}

func (NullSource) NumPtclsProduced(float64) int              { return 0 }
func (NullSource) ProducePtcls(float64, int, int, *Ensemble) {}

// InjectParticles appends the particles produced by sources during an
// interval dt to e and returns how many were inserted.
//
// Every source is asked for its count exactly once. Sources then fill
// contiguous, disjoint ranges in list order.
func InjectParticles(dt float64, e *Ensemble, sources ...Source) (int, error) {
	counts := make([]int, len(sources))
	total := 0
	for i, s := range sources {
		counts[i] = s.NumPtclsProduced(dt)
		if counts[i] < 0 {
			return 0, ErrNegativeCount
		}
		total += counts[i]
	}

	start := e.NumPtcls()
	if err := e.Resize(start + total); err != nil {
		return 0, err
	}
	for i, s := range sources {
		s.ProducePtcls(dt, start, start+counts[i], e)
		start += counts[i]
	}
	return total, nil
}
