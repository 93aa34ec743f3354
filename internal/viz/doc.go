// Package viz provides terminal views of particle simulations.
//
//   - [Model]: Bubble Tea live view stepping a simulator
//   - [Canvas]: Braille pixel canvas used for particle scatter plots
//   - [PlotSeries]: asciigraph rendering of stored run series
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial ensemble
//	+/-   - More/fewer steps per frame
//	Q     - Quit
package viz
