package system

import (
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	"github.com/l1jgo/poold/internal/core/event"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"github.com/l1jgo/poold/internal/data"
	"github.com/l1jgo/poold/internal/world"
)

// FollowSystem moves followers one step toward their leader. A follower
// whose leader handle no longer resolves is recycled. Phase 2 (Update).
type FollowSystem struct {
	world     *world.State
	templates *data.TemplateTable
	bus       *event.Bus
}

func NewFollowSystem(ws *world.State, templates *data.TemplateTable, bus *event.Bus) *FollowSystem {
	return &FollowSystem{world: ws, templates: templates, bus: bus}
}

func (s *FollowSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *FollowSystem) Update(_ time.Duration) {
	s.world.Each(func(e *ecs.Entity, n *world.Node) {
		tpl := s.templates.Get(n.Template)
		if tpl == nil || tpl.Follows == "" {
			return
		}
		leader := world.NodeOf(n.Leader.Target())
		if leader == nil {
			event.Emit(s.bus, event.FollowerOrphaned{NodeID: n.ID, Template: n.Template})
			s.world.Recycle(e)
			return
		}
		n.X += step(n.X, leader.X)
		n.Y += step(n.Y, leader.Y)
	})
}

func step(from, to int32) int32 {
	switch {
	case from < to:
		return 1
	case from > to:
		return -1
	}
	return 0
}
