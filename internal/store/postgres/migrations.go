package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed migrations/01_create_categories.up.sql
var createCategoriesUp string

//go:embed migrations/02_create_tasks.up.sql
var createTasksUp string

//go:embed migrations/03_create_history.up.sql
var createHistoryUp string

//go:embed migrations/04_create_shared_snapshots.up.sql
var createSharedSnapshotsUp string

//go:embed seed.yaml
var seedFile []byte

type seed struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Color       string `yaml:"color"`
	} `yaml:"categories"`
}

// Migrate applies the schema and seeds the shared system categories.
// Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	s.log.Debug("running migrations")

	migrations := []struct {
		name string
		sql  string
	}{
		{"categories", createCategoriesUp},
		{"tasks", createTasksUp},
		{"history", createHistoryUp},
		{"shared_snapshots", createSharedSnapshotsUp},
	}
	for _, m := range migrations {
		if _, err := s.q.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply %s migration: %w", m.name, err)
		}
	}

	if err := s.seedSystemCategories(ctx); err != nil {
		return err
	}

	s.log.Debug("migrations finished")
	return nil
}

func (s *Store) seedSystemCategories(ctx context.Context) error {
	var data seed
	if err := yaml.Unmarshal(seedFile, &data); err != nil {
		return fmt.Errorf("parse category seed: %w", err)
	}

	const q = `
		INSERT INTO categories (id, name, description, color, owner_id, is_custom)
		SELECT $1, $2, $3, $4, NULL, FALSE
		WHERE NOT EXISTS (
			SELECT 1 FROM categories WHERE name = $2 AND is_custom = FALSE
		)`

	for _, cat := range data.Categories {
		if _, err := s.q.ExecContext(ctx, q, uuid.New(), cat.Name, cat.Description, cat.Color); err != nil {
			return fmt.Errorf("seed category %q: %w", cat.Name, err)
		}
	}
	return nil
}
