// Package optim fits circulation parameters to target hemodynamics by
// exhaustive grid search. The grid stays small in practice, so every
// candidate runs to steady state in one parallel batch and the scores
// stay exactly reproducible.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/g960059/hemosim/internal/analysis"
	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
)

// GridSearch enumerates the cartesian product of per-parameter value
// lists. Names and Values run in lockstep: Values[i] holds the
// candidates for Names[i].
type GridSearch struct {
	Names  []string
	Values [][]float64
}

// Candidate is one scored grid point: the parameter edits applied on
// top of the base set, the settled summary they produced, and the loss
// against the target.
type Candidate struct {
	Edits   map[string]float64
	Summary metrics.Summary
	Loss    float64
}

// Size is the number of grid points the search will run.
func (g GridSearch) Size() int {
	if len(g.Values) == 0 {
		return 0
	}
	n := 1
	for _, vs := range g.Values {
		n *= len(vs)
	}
	return n
}

// Fit runs every grid point headless for durationMs of simulated time
// and returns the candidate whose last-beat summary comes closest to
// target. Target keys are summary map keys (map, co, sv, ...); the loss
// is the sum of squared relative errors over them. Grid points rejected
// by parameter validation are skipped, not scored.
func (g GridSearch) Fit(ctx context.Context, base circ.Params, target map[string]float64, durationMs float64, workers int) (Candidate, error) {
	if len(g.Names) == 0 || len(g.Names) != len(g.Values) {
		return Candidate{}, fmt.Errorf("grid needs matching names and value lists, got %d and %d", len(g.Names), len(g.Values))
	}
	for i, vs := range g.Values {
		if len(vs) == 0 {
			return Candidate{}, fmt.Errorf("no candidate values for %s", g.Names[i])
		}
	}
	if len(target) == 0 {
		return Candidate{}, fmt.Errorf("no target metrics to fit against")
	}
	known := metrics.Summary{}.Map()
	for k := range target {
		if _, ok := known[k]; !ok {
			return Candidate{}, fmt.Errorf("unknown target metric: %s", k)
		}
	}

	total := g.Size()
	points := make([]sim.SweepPoint, 0, total)
	edits := make([]map[string]float64, 0, total)
	for i := 0; i < total; i++ {
		e := g.editsAt(i)
		p := base
		for name, v := range e {
			if err := p.Set(name, v); err != nil {
				return Candidate{}, err
			}
		}
		if err := p.Validate(); err != nil {
			continue
		}
		points = append(points, sim.SweepPoint{
			Name:   fmt.Sprintf("candidate-%d", i),
			Params: p,
		})
		edits = append(edits, e)
	}
	if len(points) == 0 {
		return Candidate{}, fmt.Errorf("every grid point failed validation")
	}

	instances, err := sim.RunPoints(ctx, points, durationMs, workers)
	if err != nil {
		return Candidate{}, err
	}

	best := Candidate{Loss: math.Inf(1)}
	for j, inst := range instances {
		sum, ok := analysis.LastBeat(inst)
		if !ok {
			continue
		}
		loss := score(sum, target)
		if loss < best.Loss {
			best = Candidate{Edits: edits[j], Summary: sum, Loss: loss}
		}
	}
	if best.Edits == nil {
		return Candidate{}, fmt.Errorf("no grid point produced a full beat in %g ms", durationMs)
	}
	return best, nil
}

// editsAt decodes a flat grid index into one value per parameter, the
// last parameter varying fastest.
func (g GridSearch) editsAt(idx int) map[string]float64 {
	e := make(map[string]float64, len(g.Names))
	for i := len(g.Names) - 1; i >= 0; i-- {
		n := len(g.Values[i])
		e[g.Names[i]] = g.Values[i][idx%n]
		idx /= n
	}
	return e
}

func score(sum metrics.Summary, target map[string]float64) float64 {
	got := sum.Map()
	loss := 0.0
	for k, want := range target {
		r := got[k] - want
		if want != 0 {
			r /= want
		}
		loss += r * r
	}
	return loss
}
