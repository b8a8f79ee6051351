package sim

import (
	"fmt"
	"math"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/integrators"
)

// Volume injection limits. A target-volume change feeds into the state at
// most maxVolumeDelta per beat, and corrections below the dead band are
// skipped so the loop does not chatter around the target.
const (
	maxVolumeDelta = 500.0
	volumeDeadBand = 1.0
)

// Instance owns the physics of one simulated subject: its clock, state
// vector, rolling output window, and the double-buffered parameters. The
// live set is edited at any time; the active set inside the model is what
// the integrator reads, updated only at phase boundaries so an in-flight
// beat never sees a half-applied edit.
type Instance struct {
	ID string

	t     float64
	y     circ.State
	live  circ.Params
	model *circ.Model

	targetVolume float64

	integ  *integrators.RK4
	buffer *Buffer
	beats  int
}

// NewInstance seeds an instance with the canonical initial state. The
// volume target starts at the seeded circulating volume, so no injection
// fires until a caller moves it.
func NewInstance(id string, p circ.Params) *Instance {
	y := circ.InitialState()
	return &Instance{
		ID:           id,
		t:            circ.InitialTime,
		y:            y,
		live:         p,
		model:        circ.NewModel(p),
		targetVolume: circ.TotalVolume(y),
		integ:        integrators.NewRK4(),
		buffer:       NewBuffer(),
	}
}

func (inst *Instance) Time() float64 { return inst.t }

// State returns a copy of the current state vector.
func (inst *Instance) State() circ.State { return inst.y.Clone() }

// Active returns the parameter snapshot the integrator is running on.
func (inst *Instance) Active() circ.Params { return inst.model.Params }

// Live returns the editable parameter set as last accepted.
func (inst *Instance) Live() circ.Params { return inst.live }

func (inst *Instance) Beats() int { return inst.beats }

func (inst *Instance) TargetVolume() float64 { return inst.targetVolume }

// SetTargetVolume moves the circulating-volume target. The difference is
// injected at end-diastole events, clamped per beat.
func (inst *Instance) SetTargetVolume(v float64) { inst.targetVolume = v }

// Buffer exposes the rolling output window. Readers outside the stepping
// goroutine must copy via Snapshot rather than retain internals.
func (inst *Instance) Buffer() *Buffer { return inst.buffer }

// SetParam edits one live parameter. The resulting set is validated as a
// whole before it is accepted, so the hot loop never meets a value that
// could turn the valve discriminant negative.
func (inst *Instance) SetParam(name string, value float64) error {
	next := inst.live
	if err := next.Set(name, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("rejecting %s=%g: %w", name, value, err)
	}
	inst.live = next
	return nil
}

// SetParams replaces the whole live set, validating first.
func (inst *Instance) SetParams(p circ.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	inst.live = p
	return nil
}

// step advances the instance one fixed step: detect phase boundaries
// inside [t, t+dt), commit due parameter groups, integrate, append.
func (inst *Instance) step() {
	inst.syncPhase(inst.t, inst.t+StepMs)
	y, aux := inst.integ.Step(inst.model, inst.y, inst.t, StepMs)
	inst.t += StepMs
	inst.y = y
	inst.buffer.Append(Record{T: inst.t, Y: y.Clone(), Aux: aux})
}

// syncPhase runs the per-step phase detector. Both phases are computed
// against the active heart rate and the active LV Tmax before any commit,
// so a commit in this bracket cannot shift the bracket itself.
func (inst *Instance) syncPhase(before, after float64) {
	period := 60000.0 / inst.model.Params.HR
	tmax := inst.model.Params.LV.Tmax

	prev := math.Mod(before, period)
	if prev < 0 {
		prev += period
	}
	curr := math.Mod(after, period)
	if curr < 0 {
		curr += period
	}

	if curr < prev {
		inst.commitStructural()
		inst.beats++
	}
	if prev < tmax && tmax <= curr {
		inst.commitTiming()
	}
}

// commitStructural applies the structural live group at end-diastole and
// runs the volume-matching correction against the circulating total.
func (inst *Instance) commitStructural() {
	inst.model.Params.CommitStructural(&inst.live)

	delta := inst.targetVolume - circ.TotalVolume(inst.y)
	if delta > maxVolumeDelta {
		delta = maxVolumeDelta
	} else if delta < -maxVolumeDelta {
		delta = -maxVolumeDelta
	}
	if math.Abs(delta) > volumeDeadBand {
		inst.y[circ.SystemicVeins] += delta
	}
}

// commitTiming applies the systolic-timing live group at end-systole.
func (inst *Instance) commitTiming() {
	inst.model.Params.CommitTiming(&inst.live)
}
