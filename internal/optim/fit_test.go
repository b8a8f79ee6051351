package optim

import (
	"context"
	"testing"

	"github.com/g960059/hemosim/internal/analysis"
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/sim"
)

// settledMAP runs one parameter set headless and reports its last-beat
// mean arterial pressure.
func settledMAP(t *testing.T, p circ.Params, durationMs float64) float64 {
	t.Helper()
	instances, err := sim.RunPoints(context.Background(),
		[]sim.SweepPoint{{Name: "truth", Params: p}}, durationMs, 1)
	if err != nil {
		t.Fatal(err)
	}
	sum, ok := analysis.LastBeat(instances[0])
	if !ok {
		t.Fatal("reference run produced no full beat")
	}
	return sum.MAP
}

func TestFitRecoversResistanceFromPressure(t *testing.T) {
	truth := circ.Defaults()
	if err := truth.Set("Rcs", 1200); err != nil {
		t.Fatal(err)
	}
	target := map[string]float64{"map": settledMAP(t, truth, 12000)}

	g := GridSearch{
		Names:  []string{"Rcs"},
		Values: [][]float64{{600, 1200, 1600}},
	}
	best, err := g.Fit(context.Background(), circ.Defaults(), target, 12000, 2)
	if err != nil {
		t.Fatal(err)
	}
	if best.Edits["Rcs"] != 1200 {
		t.Errorf("expected the generating Rcs 1200, got %g", best.Edits["Rcs"])
	}
	if best.Loss > 1e-12 {
		t.Errorf("reproducing the generating run should score zero, got %g", best.Loss)
	}
}

func TestFitSearchesEveryDimension(t *testing.T) {
	g := GridSearch{
		Names:  []string{"HR", "Rcs"},
		Values: [][]float64{{60, 80}, {830}},
	}
	if g.Size() != 2 {
		t.Fatalf("expected 2 grid points, got %d", g.Size())
	}

	best, err := g.Fit(context.Background(), circ.Defaults(),
		map[string]float64{"hr": 80}, 8000, 2)
	if err != nil {
		t.Fatal(err)
	}
	if best.Edits["HR"] != 80 {
		t.Errorf("expected HR 80 to win, got %g", best.Edits["HR"])
	}
	if best.Edits["Rcs"] != 830 {
		t.Errorf("fixed dimension should carry through, got %g", best.Edits["Rcs"])
	}
}

func TestFitSkipsInvalidGridPoints(t *testing.T) {
	g := GridSearch{
		Names:  []string{"HR"},
		Values: [][]float64{{-10, 60}},
	}
	best, err := g.Fit(context.Background(), circ.Defaults(),
		map[string]float64{"hr": 60}, 8000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if best.Edits["HR"] != 60 {
		t.Errorf("expected the valid point to win, got %g", best.Edits["HR"])
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	base := circ.Defaults()

	if _, err := (GridSearch{}).Fit(ctx, base, map[string]float64{"map": 90}, 1000, 1); err == nil {
		t.Error("expected error for an empty grid")
	}
	g := GridSearch{Names: []string{"HR"}, Values: [][]float64{{60}, {70}}}
	if _, err := g.Fit(ctx, base, map[string]float64{"map": 90}, 1000, 1); err == nil {
		t.Error("expected error for mismatched names and values")
	}
	g = GridSearch{Names: []string{"HR"}, Values: [][]float64{{}}}
	if _, err := g.Fit(ctx, base, map[string]float64{"map": 90}, 1000, 1); err == nil {
		t.Error("expected error for an empty value list")
	}
	g = GridSearch{Names: []string{"HR"}, Values: [][]float64{{60}}}
	if _, err := g.Fit(ctx, base, nil, 1000, 1); err == nil {
		t.Error("expected error for an empty target")
	}
	if _, err := g.Fit(ctx, base, map[string]float64{"bogus": 1}, 1000, 1); err == nil {
		t.Error("expected error for an unknown target metric")
	}
	g = GridSearch{Names: []string{"Rnope"}, Values: [][]float64{{1}}}
	if _, err := g.Fit(ctx, base, map[string]float64{"map": 90}, 1000, 1); err == nil {
		t.Error("expected error for an unknown parameter")
	}
	g = GridSearch{Names: []string{"HR"}, Values: [][]float64{{-5}}}
	if _, err := g.Fit(ctx, base, map[string]float64{"map": 90}, 1000, 1); err == nil {
		t.Error("expected error when every grid point is invalid")
	}
}
