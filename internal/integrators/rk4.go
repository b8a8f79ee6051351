// Package integrators provides time integration for the circulation
// equations. The engine pins fixed-step RK4; Euler and the adaptive RK45
// pair stay around as offline references the accuracy tests and
// benchmarks compare against.
package integrators

import "github.com/g960059/hemosim/internal/circ"

// System is anything the integrators can advance: it evaluates state
// derivatives at a point in time and reports the auxiliary pressures seen
// at that evaluation.
type System interface {
	Derive(t float64, y circ.State) (circ.State, circ.Aux)
}

// RK4 advances a system with the classical fourth-order Runge-Kutta
// scheme. Stage slices are reused across calls, so a single RK4 must not
// be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 circ.State
	scratch        circ.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(circ.State, n)
		r.k2 = make(circ.State, n)
		r.k3 = make(circ.State, n)
		r.k4 = make(circ.State, n)
		r.scratch = make(circ.State, n)
	}
}

// Step advances y by dt and returns the next state together with the
// auxiliary pressures from the first stage, i.e. evaluated at (t, y).
// Readers of the pressure waveforms therefore see values one step behind
// the volumes; at millisecond steps the offset is invisible and reusing
// the first stage avoids a fifth derivative evaluation.
func (r *RK4) Step(sys System, y circ.State, t, dt float64) (circ.State, circ.Aux) {
	n := len(y)
	r.ensureScratch(n)

	k1, aux := sys.Derive(t, y)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k1[i]
	}
	k2, _ := sys.Derive(t+dt*0.5, r.scratch)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k2[i]
	}
	k3, _ := sys.Derive(t+dt*0.5, r.scratch)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + dt*r.k3[i]
	}
	k4, _ := sys.Derive(t+dt, r.scratch)
	copy(r.k4, k4)

	result := make(circ.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = y[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result, aux
}
