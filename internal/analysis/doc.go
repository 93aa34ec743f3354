// Package analysis provides phase space tools for particle ensembles.
//
//   - [PhasePortrait]: position against velocity along one axis
//   - [ComputeMoments]: beam moments and RMS emittance
//   - [PhasePortraitToASCII]: terminal rendering of a portrait
//
// # Emittance
//
// The RMS emittance along an axis is the area measure of the ensemble in
// phase space:
//
//	m, err := analysis.ComputeMoments(e, analysis.AxisX)
//	fmt.Println(m.Emittance)
package analysis
