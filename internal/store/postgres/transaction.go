package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskline/internal/store"
)

// withTx executes fn inside a transaction, rolling back on error or
// panic. When the store is already transaction-scoped the call joins
// the ambient transaction instead of opening a nested one.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if s.db == nil {
		tx, ok := s.q.(*sqlx.Tx)
		if !ok {
			return fmt.Errorf("store has no database handle")
		}
		return fn(tx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InTx runs fn against a transaction-scoped view of the task store.
func (s *Store) InTx(ctx context.Context, fn func(store.TaskStore) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&Store{log: s.log, q: tx})
	})
}
