// Package analysis provides offline studies on recorded simulation
// output:
//
//   - [PVLoop] and [StrokeWork]: the pressure-volume trajectory of the
//     last cardiac cycle and its loop area
//   - [PowerSpectrum] and [EstimatedRate]: spectral view of a sampled
//     waveform and the beat frequency read from it
//   - [ParameterResponse]: settled hemodynamics across a parameter sweep
package analysis
