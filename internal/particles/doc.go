// Package particles provides the core data structures and push steps for
// ensembles of classical point particles.
//
// The package is organised around a few types:
//
//   - [Ensemble]: positions, velocities and named properties of N particles
//   - [Source]: produces particles that [InjectParticles] appends to an ensemble
//   - [Sink]: an absorbing surface; [RemoveAbsorbed] drops absorbed particles
//   - [Force]: a per-particle force contribution consumed by [DriftKick]
//
// # Example
//
//	ens := particles.NewEnsemble(0)
//	ens.SetEnsembleProperty("mass", 1.0)
//	_, _ = particles.InjectParticles(dt, ens, src)
//	_, _ = particles.RemoveAbsorbed(dt, ens, sink)
//	_ = particles.DriftKick(dt, ens, gravity)
//
// # Thread Safety
//
// An Ensemble is NOT safe for concurrent use. Sources, sinks and forces
// receive the ensemble for the duration of a call and must not retain any
// slice obtained from it: views returned by [Ensemble.Positions] and friends
// are invalidated by [Ensemble.Resize] and [Ensemble.Compact].
package particles
