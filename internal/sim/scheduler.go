package sim

// StepMs is the fixed physics step in simulated milliseconds. It is never
// adapted; real-time pacing is handled entirely by the accumulator.
const StepMs = 2.0

// MaxStepsPerTick caps catch-up work after a stall. A frame that arrives
// seconds late runs at most this many steps and drops the rest of the
// backlog instead of freezing the caller while it replays wall time.
const MaxStepsPerTick = 20

// Scheduler converts variable wall-clock frame deltas into a whole number
// of fixed physics steps, carrying fractional remainders forward so the
// long-run step rate tracks real time regardless of frame jitter.
type Scheduler struct {
	acc    float64
	speed  float64
	paused bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{speed: 1.0}
}

// SetSpeed sets the playback multiplier on simulated time per wall time.
// Non-positive values are ignored.
func (s *Scheduler) SetSpeed(mult float64) {
	if mult > 0 {
		s.speed = mult
	}
}

func (s *Scheduler) Speed() float64 { return s.speed }

// SetPaused gates the clock. While paused every frame drains the
// accumulator, so resuming never bursts to make up the paused interval.
func (s *Scheduler) SetPaused(paused bool) { s.paused = paused }

func (s *Scheduler) Paused() bool { return s.paused }

// Advance accounts one frame of wallMs elapsed real time and returns how
// many physics steps to run now. On overload the backlog is dropped: the
// step count clamps to MaxStepsPerTick and the accumulator resets.
func (s *Scheduler) Advance(wallMs float64) int {
	if s.paused {
		s.acc = 0
		return 0
	}
	if wallMs < 0 {
		wallMs = 0
	}
	s.acc += wallMs * s.speed
	steps := int(s.acc / StepMs)
	if steps > MaxStepsPerTick {
		s.acc = 0
		return MaxStepsPerTick
	}
	s.acc -= float64(steps) * StepMs
	return steps
}
