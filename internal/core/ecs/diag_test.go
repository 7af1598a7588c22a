//go:build !release

package ecs

import (
	"errors"
	"testing"

	"github.com/l1jgo/poold/internal/core/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_RecycleReportsDoubleRelease(t *testing.T) {
	pl := pool.New[*Entity](0)
	e, p := newTestEntity("twice")
	e.Spawn(pl)
	require.NoError(t, pl.Release(e))

	err := e.Recycle()
	var dre *pool.DoubleReleaseError
	require.True(t, errors.As(err, &dre))
	assert.Equal(t, 1, pl.Len())
	assert.Equal(t, StateUnpooled, e.State())
	assert.Nil(t, e.Pool())
	// the rest of the recycle still happened
	assert.False(t, p.active)
	assert.Equal(t, uint16(1), e.Generation())
}
