package ecs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/l1jgo/poold/internal/core/event"
	"github.com/l1jgo/poold/internal/core/pool"
	"go.uber.org/zap"
)

// Factory builds a fresh, inactive payload for a template.
type Factory func() Payload

// ErrUnknownTemplate is returned by Spawn and Prewarm for unregistered templates.
var ErrUnknownTemplate = errors.New("unknown template")

type templatePool struct {
	name    string
	factory Factory
	pool    *pool.Pool[*Entity]

	spawned   uint64
	reused    uint64
	recycled  uint64
	discarded uint64
	wrapped   uint64
}

// PoolStats is a point-in-time view of one template pool.
type PoolStats struct {
	Template  string
	Pooled    int
	Spawned   uint64
	Reused    uint64
	Recycled  uint64
	Discarded uint64 // pooled entities found destroyed on claim
	Wrapped   uint64
}

// World is the top-level ECS container. It owns one entity pool per
// template and a deferred recycle queue flushed by CleanupSystem each tick.
// Game-loop goroutine only.
type World struct {
	templates    map[string]*templatePool
	byPool       map[pool.ObjectPool[*Entity]]*templatePool
	recycleQueue []Handle
	bus          *event.Bus
	log          *zap.Logger
}

// NewWorld creates an empty world. bus may be nil.
func NewWorld(bus *event.Bus, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		templates:    make(map[string]*templatePool, 16),
		byPool:       make(map[pool.ObjectPool[*Entity]]*templatePool, 16),
		recycleQueue: make([]Handle, 0, 64),
		bus:          bus,
		log:          log,
	}
}

// Register binds factory to a template name. Re-registering replaces the
// factory but keeps the pool and whatever it holds.
func (w *World) Register(template string, factory Factory) {
	tp := w.templates[template]
	if tp == nil {
		tp = &templatePool{name: template, pool: pool.New[*Entity](64)}
		w.templates[template] = tp
		w.byPool[tp.pool] = tp
	}
	tp.factory = factory
}

// Pool returns the template's entity pool, or nil if it was never registered.
func (w *World) Pool(template string) *pool.Pool[*Entity] {
	if tp := w.templates[template]; tp != nil {
		return tp.pool
	}
	return nil
}

// Prewarm builds n entities and parks them in the template pool.
func (w *World) Prewarm(template string, n int) error {
	tp := w.templates[template]
	if tp == nil {
		return fmt.Errorf("prewarm %q: %w", template, ErrUnknownTemplate)
	}
	for i := 0; i < n; i++ {
		e := NewEntity(tp.factory(), w.log)
		e.state = StateRecycled
		if err := tp.pool.Release(e); err != nil {
			return fmt.Errorf("prewarm %q: %w", template, err)
		}
	}
	w.log.Debug("pool prewarmed", zap.String("template", template), zap.Int("count", n))
	return nil
}

// Spawn claims an entity from the template pool, or builds one when the pool
// is empty, and spawns it. The payload is returned in whatever state it was
// recycled in; resetting it is the caller's job.
func (w *World) Spawn(template string) (*Entity, error) {
	tp := w.templates[template]
	if tp == nil {
		return nil, fmt.Errorf("spawn %q: %w", template, ErrUnknownTemplate)
	}

	var e *Entity
	reused := false
	for {
		claimed, ok := tp.pool.Claim()
		if !ok {
			break
		}
		if claimed.Destroyed() {
			tp.discarded++
			continue
		}
		e, reused = claimed, true
		break
	}
	if e == nil {
		e = NewEntity(tp.factory(), w.log)
	}

	e.Spawn(tp.pool)
	tp.spawned++
	if reused {
		tp.reused++
	}
	event.Emit(w.bus, EntitySpawned{Template: template, Handle: NewHandle(e), Reused: reused})
	return e, nil
}

// MarkForRecycle queues the handle's entity for end-of-tick recycling.
// Queuing the same entity twice is harmless: the second handle is stale by
// the time it is reached.
func (w *World) MarkForRecycle(h Handle) {
	w.recycleQueue = append(w.recycleQueue, h)
}

// QueuedRecycles returns the number of handles waiting for the next flush.
func (w *World) QueuedRecycles() int {
	return len(w.recycleQueue)
}

// FlushRecycleQueue recycles every queued entity that is still valid.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushRecycleQueue() error {
	var errs []error
	for i := range w.recycleQueue {
		e := w.recycleQueue[i].Target()
		if e == nil {
			continue
		}
		tp := w.byPool[e.Pool()]
		name := ""
		if tp != nil {
			name = tp.name
		}

		prev := e.Generation()
		err := e.Recycle()
		if err != nil {
			errs = append(errs, err)
		}
		if tp != nil {
			tp.recycled++
		}
		if e.Generation() < prev {
			if tp != nil {
				tp.wrapped++
			}
			event.Emit(w.bus, GenerationWrapped{Template: name, From: prev, To: e.Generation()})
		}
		event.Emit(w.bus, EntityRecycled{
			Template:   name,
			Generation: e.Generation(),
			Pooled:     e.State() == StateRecycled && err == nil,
		})
	}
	clear(w.recycleQueue)
	w.recycleQueue = w.recycleQueue[:0]
	return errors.Join(errs...)
}

// Templates returns the registered template names in sorted order.
func (w *World) Templates() []string {
	names := make([]string, 0, len(w.templates))
	for name := range w.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns per-template counters ordered by template name.
func (w *World) Stats() []PoolStats {
	names := w.Templates()
	out := make([]PoolStats, 0, len(names))
	for _, name := range names {
		tp := w.templates[name]
		out = append(out, PoolStats{
			Template:  name,
			Pooled:    tp.pool.Len(),
			Spawned:   tp.spawned,
			Reused:    tp.reused,
			Recycled:  tp.recycled,
			Discarded: tp.discarded,
			Wrapped:   tp.wrapped,
		})
	}
	return out
}
