package world

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/l1jgo/poold/internal/core/ecs"
	"github.com/l1jgo/poold/internal/core/event"
	"go.uber.org/zap"
)

// NodeRecord is the persistable part of an active node. It deliberately has
// no generation: generations are only meaningful inside one process, so a
// restored node is spawned fresh and old handles can never match it.
type NodeRecord struct {
	ID       uuid.UUID
	Template string
	Name     string
	X        int32
	Y        int32
	Age      int
	LeaderID uuid.UUID // uuid.Nil when not following
}

type liveNode struct {
	handle ecs.Handle
	node   *Node
}

// State tracks every node the world has spawned, through handles only.
// Accessed only from the game loop goroutine; no locks needed.
type State struct {
	world  *ecs.World
	bus    *event.Bus
	log    *zap.Logger
	live   []liveNode
	serial map[string]int
}

func NewState(w *ecs.World, bus *event.Bus, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		world:  w,
		bus:    bus,
		log:    log,
		live:   make([]liveNode, 0, 256),
		serial: make(map[string]int, 16),
	}
}

// World returns the entity world backing the state.
func (s *State) World() *ecs.World { return s.world }

// RegisterTemplate binds a Node factory for template in the world.
func (s *State) RegisterTemplate(template string) {
	s.world.Register(template, func() ecs.Payload {
		return NewNode(template)
	})
}

// Spawn brings a node of template to life at (x, y).
func (s *State) Spawn(template string, x, y int32) (*ecs.Entity, error) {
	e, err := s.world.Spawn(template)
	if err != nil {
		return nil, err
	}
	n := NodeOf(e)
	if n == nil {
		return nil, fmt.Errorf("spawn %q: payload is %T, not a node", template, e.Payload())
	}
	s.serial[template]++
	n.Reset(fmt.Sprintf("%s-%d", template, s.serial[template]), x, y)
	s.live = append(s.live, liveNode{handle: ecs.NewHandle(e), node: n})
	return e, nil
}

// Follow makes follower track leader.
func (s *State) Follow(follower, leader *ecs.Entity) {
	if n := NodeOf(follower); n != nil {
		n.Leader.Set(leader)
	}
}

// Recycle queues e for the end-of-tick flush.
func (s *State) Recycle(e *ecs.Entity) {
	s.world.MarkForRecycle(ecs.NewHandle(e))
}

// Destroy tears e's node down on the host side. The entity is not recycled;
// its handles simply stop resolving.
func (s *State) Destroy(e *ecs.Entity) {
	if n := NodeOf(e); n != nil {
		n.Destroy()
	}
}

// Each calls fn for every live node and forgets the ones whose handles went
// stale. Nodes the host destroyed are reported as NodeLost. fn may recycle
// or destroy nodes but must not spawn.
func (s *State) Each(fn func(e *ecs.Entity, n *Node)) {
	kept := s.live[:0]
	for i := range s.live {
		ln := s.live[i]
		e := ln.handle.Target()
		if e == nil {
			if ln.node.Destroyed() {
				event.Emit(s.bus, event.NodeLost{NodeID: ln.node.ID, Template: ln.node.Template})
				s.log.Debug("node lost to host", zap.Stringer("node", ln.node))
			}
			continue
		}
		kept = append(kept, ln)
		if fn != nil {
			fn(e, ln.node)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept
}

// Compact drops stale entries without visiting the live ones.
func (s *State) Compact() {
	s.Each(nil)
}

// Active returns per-template counts of live nodes.
func (s *State) Active() map[string]int {
	counts := make(map[string]int, 16)
	s.Each(func(_ *ecs.Entity, n *Node) {
		counts[n.Template]++
	})
	return counts
}

// Len returns the number of tracked entries, including stale ones not yet compacted.
func (s *State) Len() int { return len(s.live) }

// Snapshot returns records for every live node.
func (s *State) Snapshot() []NodeRecord {
	records := make([]NodeRecord, 0, len(s.live))
	s.Each(func(_ *ecs.Entity, n *Node) {
		rec := NodeRecord{
			ID:       n.ID,
			Template: n.Template,
			Name:     n.Name,
			X:        n.X,
			Y:        n.Y,
			Age:      n.Age,
		}
		if leader := NodeOf(n.Leader.Target()); leader != nil {
			rec.LeaderID = leader.ID
		}
		records = append(records, rec)
	})
	return records
}

// Restore spawns a fresh node for every record and relinks followers whose
// leader was restored too. Records for unknown templates are skipped.
func (s *State) Restore(records []NodeRecord) (int, error) {
	spawned := make(map[uuid.UUID]*ecs.Entity, len(records))
	restored := 0
	for _, rec := range records {
		if s.world.Pool(rec.Template) == nil {
			s.log.Warn("snapshot template not registered; skipped",
				zap.String("template", rec.Template), zap.String("name", rec.Name))
			continue
		}
		e, err := s.Spawn(rec.Template, rec.X, rec.Y)
		if err != nil {
			return restored, fmt.Errorf("restore %s: %w", rec.Name, err)
		}
		n := NodeOf(e)
		n.Name = rec.Name
		n.Age = rec.Age
		spawned[rec.ID] = e
		restored++
	}
	for _, rec := range records {
		if rec.LeaderID == uuid.Nil {
			continue
		}
		follower, leader := spawned[rec.ID], spawned[rec.LeaderID]
		if follower != nil && leader != nil {
			s.Follow(follower, leader)
		}
	}
	return restored, nil
}
