package system

import (
	"math/rand"
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	coresys "github.com/l1jgo/poold/internal/core/system"
	"github.com/l1jgo/poold/internal/data"
	"github.com/l1jgo/poold/internal/scripting"
	"github.com/l1jgo/poold/internal/world"
	"go.uber.org/zap"
)

// SpawnSystem tops templates up according to the spawn policy. Followers
// spawn next to a live leader and are skipped while none exists.
// Phase 2 (Update).
type SpawnSystem struct {
	world     *world.State
	templates *data.TemplateTable
	policy    scripting.Policy
	rng       *rand.Rand
	log       *zap.Logger
	tick      uint64
	nextLead  map[string]int
}

func NewSpawnSystem(ws *world.State, templates *data.TemplateTable, policy scripting.Policy, rng *rand.Rand, log *zap.Logger) *SpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SpawnSystem{
		world:     ws,
		templates: templates,
		policy:    policy,
		rng:       rng,
		log:       log,
		nextLead:  make(map[string]int, 8),
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	s.tick++

	counts := make(map[string]int, s.templates.Count())
	leaders := make(map[string][]*ecs.Entity, s.templates.Count())
	s.world.Each(func(e *ecs.Entity, n *world.Node) {
		counts[n.Template]++
		leaders[n.Template] = append(leaders[n.Template], e)
	})

	for _, tpl := range s.templates.All() {
		pooled := 0
		if p := s.world.World().Pool(tpl.Name); p != nil {
			pooled = p.Len()
		}
		budget := s.policy.SpawnBudget(scripting.SpawnContext{
			Template:  tpl.Name,
			Active:    counts[tpl.Name],
			Pooled:    pooled,
			MaxActive: tpl.MaxActive,
			Tick:      s.tick,
		})
		if tpl.MaxActive > 0 && counts[tpl.Name]+budget > tpl.MaxActive {
			budget = tpl.MaxActive - counts[tpl.Name]
		}

		for i := 0; i < budget; i++ {
			var leader *ecs.Entity
			x, y := int32(0), int32(0)
			if tpl.Follows != "" {
				leader = s.pickLeader(tpl.Name, leaders[tpl.Follows])
				if leader == nil {
					break
				}
				ln := world.NodeOf(leader)
				x, y = ln.X, ln.Y
			}
			x += s.jitter(tpl.Spread)
			y += s.jitter(tpl.Spread)

			e, err := s.world.Spawn(tpl.Name, x, y)
			if err != nil {
				s.log.Error("spawn failed", zap.String("template", tpl.Name), zap.Error(err))
				break
			}
			if leader != nil {
				s.world.Follow(e, leader)
			}
		}
	}
}

// pickLeader rotates through the live leaders so followers spread out.
func (s *SpawnSystem) pickLeader(follower string, candidates []*ecs.Entity) *ecs.Entity {
	if len(candidates) == 0 {
		return nil
	}
	i := s.nextLead[follower] % len(candidates)
	s.nextLead[follower] = i + 1
	return candidates[i]
}

func (s *SpawnSystem) jitter(spread int32) int32 {
	if spread <= 0 {
		return 0
	}
	return s.rng.Int31n(2*spread+1) - spread
}
