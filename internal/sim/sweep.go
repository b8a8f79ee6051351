package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/g960059/hemosim/internal/circ"
)

// SweepPoint is one headless run: a parameter set and an optional
// circulating-volume target, identified by name in the results.
type SweepPoint struct {
	Name         string
	Params       circ.Params
	TargetVolume float64 // 0 keeps the volume of the initial state
}

// RunPoints simulates every point for durationMs of simulated time on a
// worker pool and returns one settled instance per point, in input order.
// Headless stepping bypasses the wall-clock accumulator entirely, so
// points run as fast as the cores allow. workers <= 0 uses all CPUs.
func RunPoints(ctx context.Context, points []SweepPoint, durationMs float64, workers int) ([]*Instance, error) {
	if durationMs <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", durationMs)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(points) {
		workers = len(points)
	}

	instances := make([]*Instance, len(points))
	errs := make([]error, len(points))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				instances[idx], errs[idx] = runPoint(ctx, points[idx], durationMs)
			}
		}()
	}

feed:
	for i := range points {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return instances, nil
}

func runPoint(ctx context.Context, pt SweepPoint, durationMs float64) (*Instance, error) {
	if err := pt.Params.Validate(); err != nil {
		return nil, fmt.Errorf("point %s: %w", pt.Name, err)
	}

	inst := NewInstance(pt.Name, pt.Params)
	if pt.TargetVolume > 0 {
		inst.SetTargetVolume(pt.TargetVolume)
	}

	// Cancellation is checked once per frame budget, not per step.
	for inst.t < durationMs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for i := 0; i < MaxStepsPerTick && inst.t < durationMs; i++ {
			inst.step()
		}
	}
	return inst, nil
}
