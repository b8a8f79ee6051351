package control

import "sort"

// Step is one scripted parameter edit: at simulated time AtMs, set the
// named parameter to Value on the subject's live set. An empty Subject
// addresses every instance in the runtime.
type Step struct {
	AtMs    float64 `yaml:"at_ms"`
	Subject string  `yaml:"subject,omitempty"`
	Name    string  `yaml:"name"`
	Value   float64 `yaml:"value"`
}

// Schedule replays a protocol against simulated time. Steps come back
// from Due in deadline order, each exactly once, so the caller can apply
// them the same way a hand at the console would.
type Schedule struct {
	steps []Step
	next  int
}

// NewSchedule copies and time-sorts the steps. Steps sharing a deadline
// keep their written order.
func NewSchedule(steps []Step) *Schedule {
	s := make([]Step, len(steps))
	copy(s, steps)
	sort.SliceStable(s, func(i, j int) bool { return s[i].AtMs < s[j].AtMs })
	return &Schedule{steps: s}
}

// Due returns the not-yet-delivered steps whose deadline has passed at
// simulated time t. The returned slice aliases the schedule's storage;
// callers must not mutate it.
func (s *Schedule) Due(t float64) []Step {
	start := s.next
	for s.next < len(s.steps) && s.steps[s.next].AtMs <= t {
		s.next++
	}
	if s.next == start {
		return nil
	}
	return s.steps[start:s.next]
}

// Done reports whether every step has been delivered.
func (s *Schedule) Done() bool { return s.next >= len(s.steps) }

// Remaining counts the steps still waiting for their deadline.
func (s *Schedule) Remaining() int { return len(s.steps) - s.next }

// Reset rewinds the schedule for another run.
func (s *Schedule) Reset() { s.next = 0 }
