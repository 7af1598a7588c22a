package ecs

import (
	"math/rand"
	"testing"

	"github.com/l1jgo/poold/internal/core/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_Empty(t *testing.T) {
	h := EmptyHandle()
	assert.Nil(t, h.Target())
	assert.False(t, h.Valid())
	assert.Equal(t, ExpiredGeneration, h.Generation())

	h = NewHandle(nil)
	assert.Nil(t, h.Target())

	var zero Handle
	assert.Nil(t, zero.Target())
	assert.Equal(t, ExpiredGeneration, zero.generation)
}

func TestHandle_NewAndAssign(t *testing.T) {
	e, _ := newTestEntity("a")
	h := NewHandle(e)
	assert.Same(t, e, h.Target())
	assert.Equal(t, uint16(0), h.Generation())

	var assigned Handle
	assert.Nil(t, assigned.Target())
	assigned.Set(e)
	assert.Same(t, e, assigned.Target())

	assigned.Set(nil)
	assert.Nil(t, assigned.Target())
}

func TestHandle_Expire(t *testing.T) {
	e, _ := newTestEntity("a")
	h := NewHandle(e)
	require.NotNil(t, h.Target())

	h.Expire()
	assert.Nil(t, h.Target())
	// the entity itself is unaffected
	fresh := NewHandle(e)
	assert.NotNil(t, fresh.Target())
}

func TestHandle_NewGeneration(t *testing.T) {
	e, _ := newTestEntity("a")
	h := NewHandle(e)
	require.NotNil(t, h.Target())

	require.NoError(t, e.Recycle())
	assert.Nil(t, h.Target())
	assert.Nil(t, h.target, "stale handle collapses")
	assert.Equal(t, ExpiredGeneration, h.generation)
}

func TestHandle_DestroyedPayload(t *testing.T) {
	e, p := newTestEntity("a")
	h := NewHandle(e)
	copied := h
	p.destroyed = true

	assert.Nil(t, h.Target())
	assert.Nil(t, copied.Target())
	// generation did not move; liveness is a separate check
	assert.Equal(t, uint16(0), e.Generation())
}

func TestHandle_CopiesAreIndependent(t *testing.T) {
	e, _ := newTestEntity("a")
	h := NewHandle(e)
	c := h
	h.Expire()
	assert.Nil(t, h.Target())
	assert.Same(t, e, c.Target())
}

func TestHandle_PooledRoundTrip(t *testing.T) {
	pl := pool.New[*Entity](0)
	require.Equal(t, 0, pl.Len())

	e, _ := newTestEntity("pooled")
	e.Spawn(pl)
	require.Equal(t, 0, pl.Len())

	generation := e.Generation()
	h := NewHandle(e)
	require.NotNil(t, h.Target())

	require.NoError(t, e.Recycle())
	e = nil
	assert.Equal(t, 1, pl.Len())
	assert.Nil(t, h.Target())

	e, ok := pl.Claim()
	require.True(t, ok)
	assert.Equal(t, 0, pl.Len())
	assert.NotEqual(t, generation, e.Generation())
	assert.Nil(t, h.Target(), "old handle stays dead after reuse")

	h.Set(e)
	assert.NotNil(t, h.Target())
	h.Expire()
	pl.Clear()
}

func TestHandle_TwoRecyclesFromGenerationFive(t *testing.T) {
	e, _ := newTestEntity("five")
	for e.Generation() != 5 {
		require.NoError(t, e.Recycle())
	}
	e.Spawn(pool.New[*Entity](0))

	h := NewHandle(e)
	require.Equal(t, uint16(5), h.Generation())
	require.NotNil(t, h.Target())

	require.NoError(t, e.Recycle())
	assert.Nil(t, h.Target())

	e.Spawn(pool.New[*Entity](0))
	require.NoError(t, e.Recycle())
	assert.Equal(t, uint16(7), e.Generation())
	assert.Nil(t, h.Target())
}

func TestHandle_StaleAcrossSentinel(t *testing.T) {
	e, _ := newTestEntity("wrap")
	e.generation = ExpiredGeneration - 1
	h := NewHandle(e)
	require.NotNil(t, h.Target())

	require.NoError(t, e.Recycle())
	assert.Equal(t, uint16(0), e.Generation())
	assert.Nil(t, h.Target())

	// a handle bound after the wrap is valid
	fresh := NewHandle(e)
	assert.Same(t, e, fresh.Target())
}

// A handle resolves exactly while its entity has neither been recycled since
// binding nor destroyed.
func TestHandle_ValidIffGenerationMatches(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pl := pool.New[*Entity](0)

	type binding struct {
		h   Handle
		e   *Entity
		gen uint16
	}

	entities := make([]*Entity, 4)
	payloads := make([]*fakePayload, 4)
	for i := range entities {
		entities[i], payloads[i] = newTestEntity("e")
		entities[i].Spawn(pl)
	}

	var bindings []binding
	for step := 0; step < 2000; step++ {
		i := rng.Intn(len(entities))
		e := entities[i]
		switch rng.Intn(10) {
		case 0, 1, 2:
			bindings = append(bindings, binding{h: NewHandle(e), e: e, gen: e.Generation()})
		case 3, 4:
			require.NoError(t, e.Recycle())
			// e is the only pooled entity; bring it straight back
			claimed, ok := pl.Claim()
			require.True(t, ok)
			require.Same(t, e, claimed)
			claimed.Spawn(pl)
		case 5:
			if rng.Intn(20) == 0 {
				payloads[i].destroyed = true
			}
		default:
			for j := range bindings {
				b := &bindings[j]
				want := b.e.Generation() == b.gen && !b.e.Destroyed()
				got := b.h.Target() != nil
				require.Equal(t, want, got, "step %d binding %d", step, j)
			}
		}
	}
}
