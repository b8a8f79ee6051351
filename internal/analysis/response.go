package analysis

import (
	"context"
	"fmt"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
)

// ResponsePoint is the settled hemodynamic summary at one value of a
// swept parameter. OK is false when the value was rejected by validation
// or the run produced nothing to summarize.
type ResponsePoint struct {
	Value   float64
	Summary metrics.Summary
	OK      bool
}

// ParameterResponse sweeps one parameter across the given values, runs
// every variant headless for durationMs of simulated time, and
// summarizes the last beat of each. The base set is not modified; an
// unknown parameter name fails the whole sweep, an out-of-range value
// only marks its point.
func ParameterResponse(ctx context.Context, base circ.Params, name string, values []float64, durationMs float64, workers int) ([]ResponsePoint, error) {
	out := make([]ResponsePoint, len(values))
	points := make([]sim.SweepPoint, 0, len(values))
	slots := make([]int, 0, len(values))

	for i, v := range values {
		out[i].Value = v
		p := base
		if err := p.Set(name, v); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			continue
		}
		points = append(points, sim.SweepPoint{
			Name:   fmt.Sprintf("%s=%g", name, v),
			Params: p,
		})
		slots = append(slots, i)
	}

	instances, err := sim.RunPoints(ctx, points, durationMs, workers)
	if err != nil {
		return nil, err
	}
	for j, inst := range instances {
		sum, ok := LastBeat(inst)
		out[slots[j]].Summary = sum
		out[slots[j]].OK = ok
	}
	return out, nil
}

// LastBeat summarizes the newest full cardiac cycle in the instance's
// buffer at its active heart rate.
func LastBeat(inst *sim.Instance) (metrics.Summary, bool) {
	latest, ok := inst.Buffer().Latest()
	if !ok {
		return metrics.Summary{}, false
	}
	hr := inst.Active().HR
	return metrics.Compute(inst.Buffer().Since(latest.T-(60000.0/hr+sim.StepMs)), hr)
}
