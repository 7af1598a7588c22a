package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: reserved for external input
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: spawn, age, follow
	PhasePostUpdate              // 3: stats
	PhaseCleanup                 // 4: recycle queued entities
	PhasePersist                 // 5: periodic snapshot
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is the interface every game-loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
