package analysis

import (
	"math"
	"testing"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

func record(t, plv, aop, vlv float64) sim.Record {
	y := make(circ.State, circ.StateDim)
	y[circ.LeftVentricle] = vlv
	return sim.Record{T: t, Y: y, Aux: circ.Aux{Plv: plv, AoP: aop}}
}

func TestPVLoopExtractsLastCycle(t *testing.T) {
	var records []sim.Record
	for ms := 0.0; ms < 2000; ms += 10 {
		records = append(records, record(ms, 50, 90, 100+ms/100))
	}

	vs, ps, ok := PVLoop(records, 60)
	if !ok {
		t.Fatal("expected a full cycle")
	}
	if len(vs) != len(ps) {
		t.Fatalf("volume and pressure series diverge: %d vs %d", len(vs), len(ps))
	}
	// Last period is 1000 ms: samples from t=990 inclusive.
	if want := 101; len(vs) != want {
		t.Errorf("expected %d samples, got %d", want, len(vs))
	}
	if vs[0] != 100+990.0/100 {
		t.Errorf("window starts at wrong sample, volume %f", vs[0])
	}
}

func TestPVLoopNeedsFullPeriod(t *testing.T) {
	var records []sim.Record
	for ms := 0.0; ms < 500; ms += 10 {
		records = append(records, record(ms, 50, 90, 100))
	}
	if _, _, ok := PVLoop(records, 60); ok {
		t.Error("expected half a cycle to be rejected")
	}
}

func TestStrokeWorkOfRectangularLoop(t *testing.T) {
	// Idealized cycle: fill 60->120 mL at 10 mmHg, pressurize to 120,
	// eject back to 60 mL, relax. Loop area 60 * 110.
	points := []struct{ t, v, p float64 }{
		{0, 60, 10},
		{250, 120, 10},
		{500, 120, 120},
		{750, 60, 120},
		{1000, 60, 10},
	}
	var records []sim.Record
	for _, pt := range points {
		records = append(records, record(pt.t, pt.p, 90, pt.v))
	}

	work, ok := StrokeWork(records, 60)
	if !ok {
		t.Fatal("expected a full cycle")
	}
	if want := 60.0 * 110.0; math.Abs(work-want) > 1e-9 {
		t.Errorf("expected loop area %f, got %f", want, work)
	}
}

func TestStrokeWorkOnSimulation(t *testing.T) {
	r := sim.NewRuntime()
	inst, err := r.Add("subject", circ.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		r.Tick(10)
	}

	work, ok := StrokeWork(inst.Buffer().Snapshot(), inst.Active().HR)
	if !ok {
		t.Fatal("expected a full cycle after 10 s")
	}
	// A healthy left ventricle runs a few thousand mmHg*mL per beat.
	if work < 2000 || work > 15000 {
		t.Errorf("stroke work %f outside the physiologic window", work)
	}
}
