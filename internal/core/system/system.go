package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput   Phase = iota // 0: swap and deliver buffered input
	PhaseUpdate               // 1: Update event
	PhaseRender               // 2: Render event + renderer read
	PhaseCleanup              // 3: flush commands queued outside dispatch

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is one step of the frame loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
