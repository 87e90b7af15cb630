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

const taskColumns = `id, name, description, position, category_id, owner_id, deadline, planned_duration`

func (s *Store) OrderedTasks(ctx context.Context, owner uuid.UUID) ([]entity.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY position`

	var tasks []entity.Task
	if err := sqlx.SelectContext(ctx, s.q, &tasks, q, owner); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) TaskByID(ctx context.Context, id uuid.UUID) (entity.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var task entity.Task
	if err := sqlx.GetContext(ctx, s.q, &task, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Task{}, store.E("tasks.get", "task", store.ErrNotFound)
		}
		return entity.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *Store) CreateTask(ctx context.Context, task entity.Task) error {
	const q = `
		INSERT INTO tasks (id, name, description, position, category_id, owner_id, deadline, planned_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.q.ExecContext(ctx, q,
		task.ID, task.Name, task.Description, task.Order,
		task.CategoryID, task.OwnerID, task.Deadline, task.PlannedDuration)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) SaveTask(ctx context.Context, task entity.Task) error {
	const q = `
		INSERT INTO tasks (id, name, description, position, category_id, owner_id, deadline, planned_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			position = EXCLUDED.position,
			category_id = EXCLUDED.category_id,
			deadline = EXCLUDED.deadline,
			planned_duration = EXCLUDED.planned_duration`

	_, err := s.q.ExecContext(ctx, q,
		task.ID, task.Name, task.Description, task.Order,
		task.CategoryID, task.OwnerID, task.Deadline, task.PlannedDuration)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// CountByCategory counts the owner's active tasks per category,
// ascending by count. Feeds the my-tasks chart.
func (s *Store) CountByCategory(ctx context.Context, owner uuid.UUID) ([]store.CategoryCount, error) {
	const q = `
		SELECT c.name, c.color, count(t.id) AS count
		FROM tasks t
		JOIN categories c ON t.category_id = c.id
		WHERE t.owner_id = $1
		GROUP BY c.name, c.color
		ORDER BY count(t.id)`

	var counts []store.CategoryCount
	if err := sqlx.SelectContext(ctx, s.q, &counts, q, owner); err != nil {
		return nil, fmt.Errorf("count tasks by category: %w", err)
	}
	return counts, nil
}

// DeadlineCounts groups active tasks carrying a deadline by day and
// category. Feeds the deadline calendar.
func (s *Store) DeadlineCounts(ctx context.Context, owner uuid.UUID) ([]store.DeadlineCount, error) {
	const q = `
		SELECT t.deadline, c.name, c.color, count(t.id) AS count
		FROM tasks t
		JOIN categories c ON t.category_id = c.id
		WHERE t.owner_id = $1 AND t.deadline IS NOT NULL
		GROUP BY t.deadline, c.name, c.color
		ORDER BY t.deadline, c.name`

	var counts []store.DeadlineCount
	if err := sqlx.SelectContext(ctx, s.q, &counts, q, owner); err != nil {
		return nil, fmt.Errorf("count tasks by deadline: %w", err)
	}
	return counts, nil
}
