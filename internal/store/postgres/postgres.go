// Package postgres implements the store interfaces on PostgreSQL via
// sqlx. One Store serves tasks, categories, history and snapshots;
// they share a database and the retire transition spans two of the
// relations.
package postgres

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"taskline/internal/dates"
)

// Store implements store.TaskStore, store.CategoryStore,
// store.HistoryStore and store.SnapshotStore. The q field is the
// active executor: the pooled *sqlx.DB normally, an *sqlx.Tx inside a
// transaction-scoped view (db is nil there).
type Store struct {
	log *slog.Logger
	db  *sqlx.DB
	q   sqlx.ExtContext
}

// Open connects to the database at url.
func Open(log *slog.Logger, url string) (*Store, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		log.Error("database connection failed", "error", err)
		return nil, err
	}
	return &Store{log: log, db: db, q: db}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(log *slog.Logger, db *sqlx.DB) *Store {
	return &Store{log: log, db: db, q: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// historyScope builds the WHERE conditions every history aggregate
// shares: owner plus the optional closed execution-date interval.
func historyScope(owner uuid.UUID, rng dates.Range) sq.And {
	cond := sq.And{sq.Eq{"h.owner_id": owner}}
	if rng.From != nil {
		cond = append(cond, sq.GtOrEq{"h.execution_date": *rng.From})
	}
	if rng.To != nil {
		cond = append(cond, sq.LtOrEq{"h.execution_date": *rng.To})
	}
	return cond
}
