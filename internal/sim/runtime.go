package sim

import (
	"fmt"

	"github.com/g960059/hemosim/internal/circ"
)

// Runtime owns the set of live instances and the shared clock. All
// instances advance in lockstep on one absolute timeline: a tick computes
// the step count once and runs each step across every instance before
// moving to the next step. The runtime is not safe for concurrent use;
// callers serialize access on one goroutine.
type Runtime struct {
	sched *Scheduler
	order []*Instance
	byID  map[string]*Instance
}

func NewRuntime() *Runtime {
	return &Runtime{
		sched: NewScheduler(),
		byID:  make(map[string]*Instance),
	}
}

// Add creates an instance under id. When other instances already exist the
// newcomer adopts the furthest clock among them, so it integrates forward
// on the shared timeline rather than replaying from zero.
func (r *Runtime) Add(id string, p circ.Params) (*Instance, error) {
	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("instance %q already exists", id)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("instance %q: %w", id, err)
	}

	inst := NewInstance(id, p)
	for _, other := range r.order {
		if other.t > inst.t {
			inst.t = other.t
		}
	}

	r.order = append(r.order, inst)
	r.byID[id] = inst
	return inst, nil
}

// Remove drops an instance and reports whether it existed.
func (r *Runtime) Remove(id string) bool {
	if _, exists := r.byID[id]; !exists {
		return false
	}
	delete(r.byID, id)
	for i, inst := range r.order {
		if inst.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Runtime) Get(id string) (*Instance, bool) {
	inst, ok := r.byID[id]
	return inst, ok
}

// List returns the instances in insertion order.
func (r *Runtime) List() []*Instance {
	out := make([]*Instance, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Runtime) Len() int { return len(r.order) }

// Time reports the shared timeline position: the furthest instance clock,
// or the initial time when empty.
func (r *Runtime) Time() float64 {
	t := circ.InitialTime
	for _, inst := range r.order {
		if inst.t > t {
			t = inst.t
		}
	}
	return t
}

func (r *Runtime) SetSpeed(mult float64) { r.sched.SetSpeed(mult) }
func (r *Runtime) Speed() float64        { return r.sched.Speed() }
func (r *Runtime) SetPaused(p bool)      { r.sched.SetPaused(p) }
func (r *Runtime) Paused() bool          { return r.sched.Paused() }

// Tick advances the whole runtime for one frame of wallMs elapsed real
// time and returns the number of physics steps executed.
func (r *Runtime) Tick(wallMs float64) int {
	steps := r.sched.Advance(wallMs)
	for s := 0; s < steps; s++ {
		for _, inst := range r.order {
			inst.step()
		}
	}
	return steps
}
