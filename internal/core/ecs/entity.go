package ecs

import (
	"fmt"
	"math"

	"github.com/l1jgo/poold/internal/core/pool"
	"go.uber.org/zap"
)

// ExpiredGeneration is never held by a live entity. Empty handles carry it,
// so "is this handle usable" needs no separate flag.
const ExpiredGeneration uint16 = math.MaxUint16

// Payload is the host object an Entity wraps. The host owns it; the entity
// only toggles its visibility and asks whether the host has destroyed it.
// Destroyed must be O(1) and side-effect free.
type Payload interface {
	Activate()
	Deactivate()
	Destroyed() bool
}

// HandleHolder is implemented by payloads that keep Handles to other
// entities. ExpireHandles runs on every recycle so that rings of dead
// objects do not keep each other reachable.
type HandleHolder interface {
	ExpireHandles()
}

// State is where an entity sits in the spawn/recycle cycle.
type State uint8

const (
	StateUnpooled State = iota // active or abandoned, no owning pool
	StateSpawned               // active, will return to its pool on recycle
	StateRecycled              // parked in its pool's free list
)

func (s State) String() string {
	switch s {
	case StateUnpooled:
		return "unpooled"
	case StateSpawned:
		return "spawned"
	case StateRecycled:
		return "recycled"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Entity couples a payload with a generation counter and the pool it returns
// to. Single game-loop goroutine only.
//
// Code outside the owner must never keep a raw *Entity across a tick: hold
// a Handle, which re-checks the generation on every access.
type Entity struct {
	generation uint16
	state      State
	pool       pool.ObjectPool[*Entity] // non-owning back reference, nil once recycled
	payload    Payload
	log        *zap.Logger
}

// NewEntity wraps p at generation 0. p must be non-nil and is expected to
// be inactive. A nil log discards warnings.
func NewEntity(p Payload, log *zap.Logger) *Entity {
	if p == nil {
		panic("ecs: NewEntity with nil payload")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Entity{payload: p, log: log}
}

func (e *Entity) Generation() uint16             { return e.generation }
func (e *Entity) State() State                   { return e.state }
func (e *Entity) Payload() Payload               { return e.payload }
func (e *Entity) Pool() pool.ObjectPool[*Entity] { return e.pool }

// Destroyed reports whether the host has destroyed the payload. This is
// independent of the generation check.
func (e *Entity) Destroyed() bool {
	return e.payload.Destroyed()
}

// Spawn records p as the pool to return to and activates the payload.
// The generation is left untouched. A nil pool spawns the entity unpooled.
func (e *Entity) Spawn(p pool.ObjectPool[*Entity]) {
	e.pool = p
	if p == nil {
		e.state = StateUnpooled
	} else {
		e.state = StateSpawned
	}
	e.payload.Activate()
}

// Recycle deactivates the payload, advances the generation and hands the
// entity back to its pool. Every outstanding Handle expires as a result.
//
// The caller gives up the entity: it must not be used after Recycle returns.
// Recycling an entity with no pool only warns and leaves it deactivated.
// If the pool rejects the entity it is left unpooled and the error returned.
func (e *Entity) Recycle() error {
	e.payload.Deactivate()
	if h, ok := e.payload.(HandleHolder); ok {
		h.ExpireHandles()
	}

	prev := e.generation
	var wrapped bool
	e.generation, wrapped = nextGeneration(prev)
	if wrapped {
		e.log.Warn("entity generation wrapped",
			zap.String("payload", describe(e.payload)),
			zap.Uint16("from", prev),
			zap.Uint16("to", e.generation),
		)
	}

	owner := e.pool
	e.pool = nil
	if owner == nil {
		e.state = StateUnpooled
		e.log.Warn("recycling an entity which was not configured for recycling; deactivating",
			zap.String("payload", describe(e.payload)),
			zap.Uint16("generation", e.generation),
		)
		return nil
	}

	if err := owner.Release(e); err != nil {
		e.state = StateUnpooled
		return fmt.Errorf("recycle %s: %w", describe(e.payload), err)
	}
	e.state = StateRecycled
	return nil
}

// nextGeneration advances g by one, stepping over ExpiredGeneration.
// The second result is true when the sentinel had to be skipped.
func nextGeneration(g uint16) (uint16, bool) {
	g++
	if g == ExpiredGeneration {
		g++
		return g, true
	}
	return g, false
}

func describe(p Payload) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
