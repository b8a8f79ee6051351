package export

import (
	"strings"
	"testing"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

func record(t, plv, aop, vlv float64) sim.Record {
	y := make(circ.State, circ.StateDim)
	y[circ.LeftVentricle] = vlv
	return sim.Record{T: t, Y: y, Aux: circ.Aux{Plv: plv, AoP: aop}}
}

func TestWaveformSVGDrawsOnePath(t *testing.T) {
	records := []sim.Record{
		record(0, 10, 80, 100),
		record(2, 40, 85, 110),
		record(4, 90, 110, 120),
	}

	svg, err := WaveformSVG(records, "aop", 640, 240)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML declaration")
	}
	if !strings.Contains(svg, `width="640" height="240"`) {
		t.Error("viewport dimensions not applied")
	}
	if !strings.Contains(svg, signalColors["aop"]) {
		t.Error("arterial trace color not applied")
	}
	if strings.Count(svg, "<path") != 1 {
		t.Error("expected exactly one trace path")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("path contains unscalable coordinates")
	}
}

func TestWaveformSVGFlatSignal(t *testing.T) {
	records := []sim.Record{record(0, 10, 90, 100), record(2, 10, 90, 100)}
	svg, err := WaveformSVG(records, "plv", 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("flat signal must still scale")
	}
}

func TestWaveformSVGRejectsBadInput(t *testing.T) {
	records := []sim.Record{record(0, 10, 90, 100), record(2, 10, 90, 100)}
	if _, err := WaveformSVG(records, "bogus", 100, 100); err == nil {
		t.Error("expected unknown signal error")
	}
	if _, err := WaveformSVG(records[:1], "aop", 100, 100); err == nil {
		t.Error("expected error for a single record")
	}
}

func TestPVLoopSVGClosesTheLoop(t *testing.T) {
	var records []sim.Record
	for _, pt := range []struct{ t, v, p float64 }{
		{0, 60, 10},
		{250, 120, 10},
		{500, 120, 120},
		{750, 60, 120},
		{1000, 60, 10},
	} {
		records = append(records, record(pt.t, pt.p, 90, pt.v))
	}

	svg, err := PVLoopSVG(records, 60, 400, 400)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, loopColor) {
		t.Error("loop color not applied")
	}
	if !strings.Contains(svg, ` Z"`) {
		t.Error("loop path should close on itself")
	}
}

func TestPVLoopSVGNeedsFullCycle(t *testing.T) {
	records := []sim.Record{record(0, 10, 90, 100), record(100, 20, 95, 110)}
	if _, err := PVLoopSVG(records, 60, 400, 400); err == nil {
		t.Error("expected error without a full cycle")
	}
}
