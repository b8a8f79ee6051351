package circ

import "math"

// ClosedValve is the regurgitation resistance at or above which a valve is
// treated as fully competent: backward flow collapses to the linear series
// path through R+Rr, which at this magnitude is negligible leak.
const ClosedValve = 100000.0

// Flow returns the valve flow for pressure difference dp (upstream minus
// downstream, positive opening the valve). Forward flow solves the
// pressure balance dp = R*q + Rs*q^2, so a stenotic valve loses
// disproportionately more pressure at high flow. Backward flow mirrors the
// same relation with Rr in place of Rs and carries a negative sign.
func (v Valve) Flow(dp float64) float64 {
	if dp > 0 {
		return forwardRoot(dp, v.R, v.Rs)
	}
	if v.Rr >= ClosedValve {
		return dp / (v.R + v.Rr)
	}
	return -forwardRoot(-dp, v.R, v.Rr)
}

// forwardRoot is the non-negative root of k*q^2 + r*q = dp for dp >= 0,
// degrading to the linear solution when k is zero.
func forwardRoot(dp, r, k float64) float64 {
	if k == 0 {
		return dp / r
	}
	return (-r + math.Sqrt(r*r+4*k*dp)) / (2 * k)
}
