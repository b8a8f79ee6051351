package circ

import "math"

// Activation evaluates the normalized elastance driver e(t) in [0, 1].
// The curve rises as a half-cosine to 1 at tmax, falls along a cosine lobe
// through 9/8 tmax, then decays exponentially with time constant tau toward
// the diastolic floor. Both branch joins are continuous for any hr:
// the halves meet at 1 at tmax and at (2+sqrt2)/4 at 9/8 tmax.
func Activation(t, tmax, tau, hr float64) float64 {
	period := 60000.0 / hr
	phase := math.Mod(t, period)
	if phase < 0 {
		phase += period
	}
	switch {
	case phase < tmax:
		base := math.Exp(-(period-1.5*tmax)/tau) / 2
		return (1-math.Cos(math.Pi*phase/tmax))/2*(1-base) + base
	case phase < 9*tmax/8:
		return (math.Cos(2*math.Pi*phase/tmax) + 1) / 2
	default:
		return math.Exp(-(phase-9*tmax/8)/tau) * (2 + math.Sqrt2) / 4
	}
}
