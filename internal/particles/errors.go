package particles

import (
	"errors"
	"fmt"
)

// Domain errors for ensemble operations.
var (
	// ErrDimensionMismatch indicates an array whose length disagrees with the
	// number of particles in the ensemble.
	ErrDimensionMismatch = errors.New("particles: dimension mismatch with particle count")

	// ErrMissingMass indicates that neither an ensemble nor a particle "mass"
	// property is available to the kick phase.
	ErrMissingMass = errors.New("particles: no mass ensemble or particle property")

	// ErrNegativeSize indicates a resize to fewer than zero particles.
	ErrNegativeSize = errors.New("particles: negative ensemble size")

	// ErrNegativeCount indicates a source that reported a negative number of
	// particles to produce.
	ErrNegativeCount = errors.New("particles: source produced negative particle count")

	// ErrDegenerateNormal indicates a sink plane with a zero normal vector.
	ErrDegenerateNormal = errors.New("particles: plane normal must be non-zero")
)

// PropertyError wraps ErrDimensionMismatch with the offending property.
type PropertyError struct {
	Key  string
	Got  int
	Want int
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("particles: property %q has %d entries, ensemble has %d particles", e.Key, e.Got, e.Want)
}

func (e *PropertyError) Unwrap() error {
	return ErrDimensionMismatch
}
