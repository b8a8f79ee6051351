package integrators

import (
	"math"
	"testing"

	"github.com/g960059/hemosim/internal/circ"
)

type oscillator struct{}

func (o *oscillator) Derive(t float64, y circ.State) (circ.State, circ.Aux) {
	return circ.State{y[1], -y[0]}, circ.Aux{}
}

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	y := circ.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		y, _ = integ.Step(sys, y, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(y[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", y[0], expectedX)
	}
	if math.Abs(y[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", y[1], expectedV)
	}
}

func TestRK4OutperformsEuler(t *testing.T) {
	sys := &oscillator{}
	rk4 := NewRK4()
	euler := NewEuler()

	dt := 0.05
	steps := 200
	a := circ.State{1.0, 0.0}
	b := circ.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		a, _ = rk4.Step(sys, a, float64(i)*dt, dt)
		b, _ = euler.Step(sys, b, float64(i)*dt, dt)
	}

	want := math.Cos(float64(steps) * dt)
	errRK4 := math.Abs(a[0] - want)
	errEuler := math.Abs(b[0] - want)
	if errRK4*100 > errEuler {
		t.Errorf("expected RK4 error (%g) well below Euler error (%g)", errRK4, errEuler)
	}
}

func TestRK4Deterministic(t *testing.T) {
	run := func() circ.State {
		m := circ.NewModel(circ.Defaults())
		integ := NewRK4()
		y := circ.InitialState()
		for i := 0; i < 500; i++ {
			y, _ = integ.Step(m, y, float64(i)*2.0, 2.0)
		}
		return y
	}
	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v, repeat run diverged", i, a[i], b[i])
		}
	}
}

func TestRK4AuxFromStepStart(t *testing.T) {
	m := circ.NewModel(circ.Defaults())
	integ := NewRK4()
	y := circ.InitialState()

	_, wantAux := m.Derive(460, y)
	_, gotAux := integ.Step(m, y, 460, 2.0)
	if gotAux != wantAux {
		t.Errorf("expected aux from step start, got %+v want %+v", gotAux, wantAux)
	}
}

func TestRK4ConservesCirculatingVolume(t *testing.T) {
	m := circ.NewModel(circ.Defaults())
	integ := NewRK4()
	y := circ.InitialState()
	before := circ.TotalVolume(y)

	for i := 0; i < 2000; i++ {
		y, _ = integ.Step(m, y, float64(i)*2.0, 2.0)
	}
	if !y.IsValid() {
		t.Fatal("state went non-finite")
	}
	after := circ.TotalVolume(y)
	if math.Abs(after-before) > 1e-6 {
		t.Errorf("circulating volume drifted from %f to %f", before, after)
	}
}

func TestRK4ScratchTracksDimension(t *testing.T) {
	integ := NewRK4()
	osc := &oscillator{}

	y2, _ := integ.Step(osc, circ.State{1, 0}, 0, 0.01)
	if len(y2) != 2 {
		t.Fatalf("expected 2-dimensional result, got %d", len(y2))
	}

	m := circ.NewModel(circ.Defaults())
	y12, _ := integ.Step(m, circ.InitialState(), 0, 2.0)
	if len(y12) != circ.StateDim {
		t.Fatalf("expected %d-dimensional result, got %d", circ.StateDim, len(y12))
	}
	if !y12.IsValid() {
		t.Error("result invalid after scratch reallocation")
	}
}
