package circ

import (
	"math"
	"testing"
)

func TestChamberPressureAtUnstressedVolume(t *testing.T) {
	c := Defaults().LV
	for _, at := range []float64{0, 150, 460, 800} {
		if p := c.Pressure(c.V0, at, 60); math.Abs(p) > 1e-12 {
			t.Errorf("t %f: expected zero pressure at V0, got %f", at, p)
		}
	}
}

func TestChamberPeakPressureIsEndSystolic(t *testing.T) {
	c := Defaults().LV
	v := 120.0
	// Activation reaches exactly 1 at delay+tmax, where pressure must
	// equal the linear end-systolic relation.
	p := c.Pressure(v, c.Delay+c.Tmax, 60)
	want := c.Ees * (v - c.V0)
	if math.Abs(p-want) > 1e-9 {
		t.Errorf("expected end-systolic pressure %f, got %f", want, p)
	}
}

func TestChamberDiastolicPressureNearPassive(t *testing.T) {
	c := Defaults().LV
	v := 120.0
	passive := c.Beta * (math.Exp(c.Alpha*(v-c.V0)) - 1)
	// Late diastole, long after relaxation has run out.
	p := c.Pressure(v, 950, 60)
	if math.Abs(p-passive) > 0.5 {
		t.Errorf("expected near-passive pressure %f, got %f", passive, p)
	}
}

func TestChamberPressureBracketedByRelations(t *testing.T) {
	c := Defaults().RV
	v := 128.0
	passive := c.Beta * (math.Exp(c.Alpha*(v-c.V0)) - 1)
	active := c.Ees * (v - c.V0)
	period := 60000.0 / 60
	for i := 0; i < 100; i++ {
		at := period * float64(i) / 100
		p := c.Pressure(v, at, 60)
		if p < passive-1e-9 || p > active+1e-9 {
			t.Fatalf("t %f: pressure %f outside [%f, %f]", at, p, passive, active)
		}
	}
}

func TestChamberDelayShiftsActivation(t *testing.T) {
	base := Chamber{Ees: 2.21, V0: 5, Alpha: 0.029, Beta: 0.34, Tmax: 300, Tau: 25, Delay: 0}
	delayed := base
	delayed.Delay = 160
	v := 120.0
	p0 := base.Pressure(v, 300, 60)
	p1 := delayed.Pressure(v, 460, 60)
	if math.Abs(p0-p1) > 1e-9 {
		t.Errorf("delay should shift the waveform: %f vs %f", p0, p1)
	}
}
