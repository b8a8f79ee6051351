// Package circ implements a lumped-parameter (zero-dimensional) model of the
// human circulation: the four heart chambers plus systemic and pulmonary
// vascular compartments, expressed as an electrical-circuit analogy where
// each compartment holds a volume-like charge and compliance-backed
// compartments derive pressure as charge/compliance.
//
// The model surface is three functions layered onto [Params]:
//
//   - [Activation]: time-varying elastance fraction over the cardiac cycle
//   - [Chamber.Pressure]: passive/active pressure-volume relation of a chamber
//   - [Valve.Flow]: asymmetric nonlinear flow through a cardiac valve
//
// [Derive] assembles them into the full 12-component state derivative by
// conservation at each node. Units are mmHg, mL, and ms throughout; flows
// come out in mL/ms and resistances are mmHg·ms/mL.
package circ

import "math"

// State vector component indices. The order is fixed wire format shared by
// every consumer (integrator, buffers, exports) and must not be rearranged.
const (
	SystemicVeins = iota
	SystemicArteries
	PulmonaryArteries
	PulmonaryVeins
	LeftVentricle
	LeftAtrium
	RightVentricle
	RightAtrium
	AorticRoot // proximal aortic compliance chamber
	DistalAorta
	PulmonaryRoot // proximal pulmonary artery compliance chamber
	Reservoir     // bookkeeping compartment, derivative is always zero

	StateDim
)

// InitialTime is the canonical simulation start time in ms.
const InitialTime = 0.0

// State holds the 12 compartment charges (volume analogs, mL).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// InitialState returns the canonical seed vector used for every new
// instance. The values approximate a settled beat at end-diastole under
// Defaults().
func InitialState() State {
	return State{
		SystemicVeins:     370.0,
		SystemicArteries:  145.0,
		PulmonaryArteries: 28.0,
		PulmonaryVeins:    70.0,
		LeftVentricle:     120.0,
		LeftAtrium:        52.0,
		RightVentricle:    128.0,
		RightAtrium:       60.0,
		AorticRoot:        43.0,
		DistalAorta:       32.0,
		PulmonaryRoot:     13.5,
		Reservoir:         0.0,
	}
}

// StateNames returns the canonical short column names in state order.
func StateNames() []string {
	return []string{
		"vvs", "vas", "vap", "vvp", "vlv", "vla",
		"vrv", "vra", "vao", "vda", "vpa", "vres",
	}
}

// TotalVolume sums the filled hemodynamic volume. The reservoir compartment
// is auxiliary accounting and is excluded.
func TotalVolume(y State) float64 {
	total := 0.0
	for i, v := range y {
		if i == Reservoir {
			continue
		}
		total += v
	}
	return total
}
