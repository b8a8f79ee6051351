// Package control steers live simulation parameters from outside the
// integration loop.
//
// Two mechanisms exist:
//
//   - [Baroreflex]: closed loop. Observed mean arterial pressure drives
//     the commanded heart rate around a resting baseline.
//   - [Schedule]: open loop. A scripted protocol of timed parameter
//     edits, typically loaded from a scenario file.
//
// Both write through the same live-parameter path as interactive edits,
// so every change lands at the next phase boundary rather than mid-beat.
package control
