package system

import (
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"github.com/l1jgo/poold/internal/data"
	"github.com/l1jgo/poold/internal/scripting"
	"github.com/l1jgo/poold/internal/world"
)

// LifetimeSystem ages every live node by one tick and queues the ones the
// policy retires. Phase 2 (Update).
type LifetimeSystem struct {
	world     *world.State
	templates *data.TemplateTable
	policy    scripting.Policy
}

func NewLifetimeSystem(ws *world.State, templates *data.TemplateTable, policy scripting.Policy) *LifetimeSystem {
	return &LifetimeSystem{world: ws, templates: templates, policy: policy}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *LifetimeSystem) Update(_ time.Duration) {
	s.world.Each(func(e *ecs.Entity, n *world.Node) {
		n.Age++
		lifetime := 0
		if tpl := s.templates.Get(n.Template); tpl != nil {
			lifetime = tpl.Lifetime
		}
		if s.policy.ShouldRecycle(scripting.RecycleContext{
			Template: n.Template,
			Age:      n.Age,
			Lifetime: lifetime,
		}) {
			s.world.Recycle(e)
		}
	})
}
