package integrators

import "github.com/g960059/hemosim/internal/circ"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, y circ.State, t, dt float64) (circ.State, circ.Aux) {
	dydt, aux := sys.Derive(t, y)
	result := make(circ.State, len(y))
	for i := range y {
		result[i] = y[i] + dt*dydt[i]
	}
	return result, aux
}
