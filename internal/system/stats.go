package system

import (
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	"github.com/l1jgo/poold/internal/core/event"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"go.uber.org/zap"
)

// StatsSystem counts lifecycle events and logs a pool summary every
// interval ticks. Phase 3 (PostUpdate).
type StatsSystem struct {
	world    *ecs.World
	log      *zap.Logger
	interval int
	tick     int

	wraps    int
	lost     int
	orphaned int
}

// NewStatsSystem builds the system. With a nil bus no events are counted and
// only the pool summaries are logged.
func NewStatsSystem(w *ecs.World, bus *event.Bus, interval int, log *zap.Logger) *StatsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &StatsSystem{world: w, log: log, interval: interval}
	event.Subscribe(bus, func(ev ecs.GenerationWrapped) {
		s.wraps++
		s.log.Info("generation wrapped",
			zap.String("template", ev.Template),
			zap.Uint16("from", ev.From),
			zap.Uint16("to", ev.To),
		)
	})
	event.Subscribe(bus, func(event.NodeLost) { s.lost++ })
	event.Subscribe(bus, func(event.FollowerOrphaned) { s.orphaned++ })
	return s
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StatsSystem) Update(_ time.Duration) {
	s.tick++
	if s.interval <= 0 || s.tick%s.interval != 0 {
		return
	}
	for _, st := range s.world.Stats() {
		s.log.Info("pool stats",
			zap.String("template", st.Template),
			zap.Int("pooled", st.Pooled),
			zap.Uint64("spawned", st.Spawned),
			zap.Uint64("reused", st.Reused),
			zap.Uint64("recycled", st.Recycled),
			zap.Uint64("discarded", st.Discarded),
		)
	}
	s.log.Info("lifecycle events",
		zap.Int("wraps", s.wraps),
		zap.Int("lost", s.lost),
		zap.Int("orphaned", s.orphaned),
	)
}

// Counts returns the event totals seen so far: wraps, lost nodes, orphaned followers.
func (s *StatsSystem) Counts() (wraps, lost, orphaned int) {
	return s.wraps, s.lost, s.orphaned
}
