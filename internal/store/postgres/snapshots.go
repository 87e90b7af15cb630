package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskline/internal/entity"
	"taskline/internal/store"
)

// SaveSnapshot freezes a statistics payload under its key. Snapshots
// are never updated afterwards.
func (s *Store) SaveSnapshot(ctx context.Context, snap entity.Snapshot) error {
	const q = `
		INSERT INTO shared_snapshots (key, owner_id, from_date, to_date, statistics)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.q.ExecContext(ctx, q, snap.Key, snap.OwnerID, snap.From, snap.To, snap.Statistics)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *Store) SnapshotByKey(ctx context.Context, key string) (entity.Snapshot, error) {
	const q = `SELECT key, owner_id, from_date, to_date, statistics FROM shared_snapshots WHERE key = $1`

	var snap entity.Snapshot
	if err := sqlx.GetContext(ctx, s.q, &snap, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Snapshot{}, store.E("snapshots.get", "snapshot", store.ErrNotFound)
		}
		return entity.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}
