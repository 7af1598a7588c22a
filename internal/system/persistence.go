package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/poold/internal/core/system"
	"github.com/l1jgo/poold/internal/world"
	"go.uber.org/zap"
)

// SnapshotStore persists the active node set.
type SnapshotStore interface {
	Save(ctx context.Context, records []world.NodeRecord) error
}

// PersistenceSystem periodically snapshots every active node. Phase 5 (Persist).
type PersistenceSystem struct {
	world     *world.State
	store     SnapshotStore
	log       *zap.Logger
	tickCount int
	interval  int // snapshot every N ticks; 0 disables the periodic save
	timeout   time.Duration
}

func NewPersistenceSystem(ws *world.State, store SnapshotStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &PersistenceSystem{
		world:    ws,
		store:    store,
		log:      log,
		interval: intervalTicks,
		timeout:  5 * time.Second,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.SaveNow(context.Background()); err != nil {
		s.log.Error("periodic snapshot failed", zap.Error(err))
	}
}

// SaveNow writes the current snapshot immediately. Called on shutdown.
func (s *PersistenceSystem) SaveNow(ctx context.Context) error {
	records := s.world.Snapshot()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Save(ctx, records); err != nil {
		return err
	}
	s.log.Debug("snapshot written", zap.Int("nodes", len(records)))
	return nil
}
