package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/l1jgo/poold/internal/world"
)

var snapshotColumns = []string{"id", "template", "name", "x", "y", "age", "leader_id"}

// SnapshotRepo stores the set of active nodes across restarts.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save replaces the stored snapshot with records in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, records []world.NodeRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM node_snapshot`); err != nil {
		return fmt.Errorf("snapshot clear: %w", err)
	}
	if len(records) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"node_snapshot"},
			snapshotColumns,
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				return snapshotRow(records[i]), nil
			}),
		); err != nil {
			return fmt.Errorf("snapshot copy: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot commit: %w", err)
	}
	r.db.log.Debug("snapshot saved")
	return nil
}

// Load returns the stored snapshot ordered by template, then name.
func (r *SnapshotRepo) Load(ctx context.Context) ([]world.NodeRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, template, name, x, y, age, leader_id
		 FROM node_snapshot ORDER BY template, name`)
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	defer rows.Close()

	var result []world.NodeRecord
	for rows.Next() {
		var (
			id, leader pgtype.UUID
			rec        world.NodeRecord
			x, y, age  int32
		)
		if err := rows.Scan(&id, &rec.Template, &rec.Name, &x, &y, &age, &leader); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		rec.ID = fromPgUUID(id)
		rec.LeaderID = fromPgUUID(leader)
		rec.X, rec.Y, rec.Age = x, y, int(age)
		result = append(result, rec)
	}
	return result, rows.Err()
}

func snapshotRow(rec world.NodeRecord) []any {
	return []any{
		toPgUUID(rec.ID), rec.Template, rec.Name,
		rec.X, rec.Y, int32(rec.Age), toPgUUID(rec.LeaderID),
	}
}

// toPgUUID maps uuid.Nil to SQL NULL.
func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: [16]byte(id), Valid: id != uuid.Nil}
}

func fromPgUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}
