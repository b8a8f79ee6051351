package circ

import "math"

// Pressure returns the chamber pressure at volume v and simulation time t.
// The passive relation is exponential, the active one linear in volume, and
// the activation curve interpolates between them over the beat. The chamber
// delay shifts activation relative to atrial onset, so ventricles contract
// after the atria have emptied into them.
func (c Chamber) Pressure(v, t, hr float64) float64 {
	ped := c.Beta * (math.Exp(c.Alpha*(v-c.V0)) - 1)
	pes := c.Ees * (v - c.V0)
	e := Activation(t-c.Delay, c.Tmax, c.Tau, hr)
	return ped + e*(pes-ped)
}
