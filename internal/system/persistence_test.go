package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/poold/internal/core/ecs"
	"github.com/l1jgo/poold/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	saves [][]world.NodeRecord
	err   error
}

func (m *memStore) Save(_ context.Context, records []world.NodeRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, records)
	return nil
}

func TestPersistenceSystem_Interval(t *testing.T) {
	ws := world.NewState(ecs.NewWorld(nil, nil), nil, nil)
	ws.RegisterTemplate("wolf")
	_, err := ws.Spawn("wolf", 1, 1)
	require.NoError(t, err)

	store := &memStore{}
	ps := NewPersistenceSystem(ws, store, nil, 3)
	for i := 0; i < 7; i++ {
		ps.Update(time.Millisecond)
	}
	require.Len(t, store.saves, 2)
	assert.Len(t, store.saves[0], 1)
	assert.Equal(t, "wolf-1", store.saves[0][0].Name)
}

func TestPersistenceSystem_Disabled(t *testing.T) {
	ws := world.NewState(ecs.NewWorld(nil, nil), nil, nil)
	store := &memStore{}
	ps := NewPersistenceSystem(ws, store, nil, 0)
	for i := 0; i < 10; i++ {
		ps.Update(time.Millisecond)
	}
	assert.Empty(t, store.saves)

	require.NoError(t, ps.SaveNow(context.Background()))
	assert.Len(t, store.saves, 1)
}

func TestPersistenceSystem_ErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ws := world.NewState(ecs.NewWorld(nil, nil), nil, nil)
	ps := NewPersistenceSystem(ws, &memStore{err: errors.New("db down")}, zap.New(core), 1)
	ps.Update(time.Millisecond)
	assert.Equal(t, 1, logs.FilterMessage("periodic snapshot failed").Len())
}
