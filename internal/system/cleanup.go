package system

import (
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred recycle queue at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if err := s.world.FlushRecycleQueue(); err != nil {
		s.log.Error("recycle flush", zap.Error(err))
	}
}
