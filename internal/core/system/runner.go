package system

import (
	"fmt"
	"time"
)

// Timings is the wall time each phase took during one frame.
type Timings [phaseCount]time.Duration

func (t Timings) Phase(p Phase) time.Duration { return t[p] }

func (t Timings) Total() time.Duration {
	var sum time.Duration
	for _, d := range t {
		sum += d
	}
	return sum
}

// Runner executes one frame: every phase in order, the systems of a phase in
// registration order.
type Runner struct {
	phases [phaseCount][]System
	now    func() time.Time
}

// NewRunner returns a Runner timing its phases with now, or time.Now if nil.
func NewRunner(now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{now: now}
}

// Register adds s to the end of its phase. It panics on a phase outside
// PhaseInput..PhaseCleanup.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: %T registered with unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick runs one frame and returns how long each phase took.
func (r *Runner) Tick(dt time.Duration) Timings {
	var t Timings
	start := r.now()
	for p, systems := range r.phases {
		for _, s := range systems {
			s.Update(dt)
		}
		end := r.now()
		t[p] = end.Sub(start)
		start = end
	}
	return t
}
