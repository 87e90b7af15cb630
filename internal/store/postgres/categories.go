package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskline/internal/entity"
	"taskline/internal/store"
)

const categoryColumns = `id, name, description, color, owner_id, is_custom`

func (s *Store) CategoryByID(ctx context.Context, id uuid.UUID) (entity.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var cat entity.Category
	if err := sqlx.GetContext(ctx, s.q, &cat, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Category{}, store.E("categories.get", "category", store.ErrNotFound)
		}
		return entity.Category{}, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

// OrderedCategories lists the categories visible to the owner: shared
// system ones first, then the owner's custom ones, names as tiebreak
// so the order is stable across calls.
func (s *Store) OrderedCategories(ctx context.Context, owner uuid.UUID) ([]entity.Category, error) {
	const q = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 OR is_custom = FALSE
		ORDER BY is_custom, lower(name)`

	var cats []entity.Category
	if err := sqlx.SelectContext(ctx, s.q, &cats, q, owner); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *Store) CreateCategory(ctx context.Context, cat entity.Category) error {
	const q = `
		INSERT INTO categories (id, name, description, color, owner_id, is_custom)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.q.ExecContext(ctx, q,
		cat.ID, cat.Name, cat.Description, cat.Color, cat.OwnerID, cat.IsCustom)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *Store) SaveCategory(ctx context.Context, cat entity.Category) error {
	const q = `
		UPDATE categories
		SET name = $2, description = $3, color = $4
		WHERE id = $1`

	res, err := s.q.ExecContext(ctx, q, cat.ID, cat.Name, cat.Description, cat.Color)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return store.E("categories.save", "category", store.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes the category. Its tasks cascade with it;
// history rows keep living and lose the reference (FK SET NULL).
func (s *Store) DeleteCategory(ctx context.Context, cat entity.Category) error {
	const q = `DELETE FROM categories WHERE id = $1`

	res, err := s.q.ExecContext(ctx, q, cat.ID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return store.E("categories.delete", "category", store.ErrNotFound)
	}
	return nil
}
