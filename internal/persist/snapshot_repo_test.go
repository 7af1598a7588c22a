package persist

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/poold/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRow_LeaderlessIsNull(t *testing.T) {
	rec := world.NodeRecord{ID: uuid.New(), Template: "wolf", Name: "wolf-1", X: 1, Y: -2, Age: 9}
	row := snapshotRow(rec)
	require.Len(t, row, len(snapshotColumns))

	assert.Equal(t, toPgUUID(rec.ID), row[0])
	assert.Equal(t, int32(9), row[5])
	assert.False(t, toPgUUID(uuid.Nil).Valid)
	assert.Equal(t, uuid.Nil, fromPgUUID(toPgUUID(uuid.Nil)))
}

func TestPgUUID_RoundTrip(t *testing.T) {
	id := uuid.New()
	pg := toPgUUID(id)
	assert.True(t, pg.Valid)
	assert.Equal(t, id, fromPgUUID(pg))
}

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	body, err := fs.ReadFile(migrations, names[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"))
	assert.Contains(t, string(body), "CREATE TABLE node_snapshot")
}
