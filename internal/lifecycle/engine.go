// Package lifecycle orchestrates the active-task side: manual
// ordering, ownership-checked access, category management and the
// transition that retires a task into history.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskline/internal/colors"
	"taskline/internal/dates"
	"taskline/internal/entity"
	"taskline/internal/store"
)

// Engine is constructed with its store dependencies at the call
// boundary; there is no process-wide shared instance.
type Engine struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	history    store.HistoryStore
	now        func() time.Time
}

func NewEngine(tasks store.TaskStore, categories store.CategoryStore, history store.HistoryStore) *Engine {
	return &Engine{
		tasks:      tasks,
		categories: categories,
		history:    history,
		now:        time.Now,
	}
}

// WithClock replaces the engine's clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// OrderedTasks returns the owner's active tasks ascending by rank.
func (e *Engine) OrderedTasks(ctx context.Context, owner uuid.UUID) ([]entity.Task, error) {
	return e.tasks.OrderedTasks(ctx, owner)
}

// OrderedCategories returns the categories visible to the owner.
func (e *Engine) OrderedCategories(ctx context.Context, owner uuid.UUID) ([]entity.Category, error) {
	return e.categories.OrderedCategories(ctx, owner)
}

// NextOrder returns the rank a newly created task takes: one past the
// last active task, or 1 for an empty list.
func (e *Engine) NextOrder(ctx context.Context, owner uuid.UUID) (int, error) {
	tasks, err := e.tasks.OrderedTasks(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 1, nil
	}
	return tasks[len(tasks)-1].Order + 1, nil
}

// Reorder re-ranks the owner's active tasks to match ids. The list
// must be an exact permutation of the active set; anything partial or
// foreign fails before a single write. All updates share one
// transaction so a mid-loop failure cannot leave a partial re-ranking.
func (e *Engine) Reorder(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) error {
	current, err := e.tasks.OrderedTasks(ctx, owner)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]entity.Task, len(current))
	for _, task := range current {
		byID[task.ID] = task
	}

	if len(ids) != len(current) {
		return store.Invalid("reorder list has %d ids, owner has %d active tasks", len(ids), len(current))
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return store.Invalid("reorder list references unknown task %s", id)
		}
		if _, dup := seen[id]; dup {
			return store.Invalid("reorder list repeats task %s", id)
		}
		seen[id] = struct{}{}
	}

	return e.tasks.InTx(ctx, func(ts store.TaskStore) error {
		for i, id := range ids {
			task := byID[id]
			if task.Order == i+1 {
				continue
			}
			task.Order = i + 1
			if err := ts.SaveTask(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
}

// CompleteTask retires the task as done. A deadline already in the
// past classifies it out-of-deadline, a missing deadline never does.
func (e *Engine) CompleteTask(ctx context.Context, owner, taskID uuid.UUID, execution time.Duration) error {
	task, err := e.Task(ctx, owner, taskID)
	if err != nil {
		return err
	}
	if dates.OutOfDeadline(task.Deadline, e.now()) {
		return e.history.RecordOutOfDeadline(ctx, task, execution)
	}
	return e.history.RecordSuccessful(ctx, task, execution)
}

// FailTask retires the task as failed, deadline or not.
func (e *Engine) FailTask(ctx context.Context, owner, taskID uuid.UUID, execution time.Duration) error {
	task, err := e.Task(ctx, owner, taskID)
	if err != nil {
		return err
	}
	return e.history.RecordFailed(ctx, task, execution)
}

// Task loads a task and enforces that the caller owns it.
func (e *Engine) Task(ctx context.Context, owner, taskID uuid.UUID) (entity.Task, error) {
	task, err := e.tasks.TaskByID(ctx, taskID)
	if err != nil {
		return entity.Task{}, err
	}
	if task.OwnerID != owner {
		return entity.Task{}, store.E("tasks.get", "task", store.ErrForbidden)
	}
	return task, nil
}

// Category loads a category and enforces ownership. A system category
// has no owner, so it fails this check for every caller; that keeps
// shared categories read-only.
func (e *Engine) Category(ctx context.Context, owner, categoryID uuid.UUID) (entity.Category, error) {
	cat, err := e.categories.CategoryByID(ctx, categoryID)
	if err != nil {
		return entity.Category{}, err
	}
	if cat.OwnerID == nil || *cat.OwnerID != owner {
		return entity.Category{}, store.E("categories.get", "category", store.ErrForbidden)
	}
	return cat, nil
}

// TaskInput carries the user-editable task fields.
type TaskInput struct {
	Name            string
	Description     string
	CategoryID      uuid.UUID
	Deadline        *time.Time
	PlannedDuration time.Duration
}

// CreateTask appends a new task at the end of the owner's list.
func (e *Engine) CreateTask(ctx context.Context, owner uuid.UUID, input TaskInput) (entity.Task, error) {
	order, err := e.NextOrder(ctx, owner)
	if err != nil {
		return entity.Task{}, err
	}

	task := entity.Task{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     input.Description,
		Order:           order,
		CategoryID:      input.CategoryID,
		OwnerID:         owner,
		Deadline:        input.Deadline,
		PlannedDuration: input.PlannedDuration,
	}
	if err := entity.Validate(task); err != nil {
		return entity.Task{}, store.Invalid("task: %v", err)
	}
	if err := e.tasks.CreateTask(ctx, task); err != nil {
		return entity.Task{}, err
	}
	return task, nil
}

// UpdateTask saves edits to an owned task. Rank is not editable here;
// Reorder owns it.
func (e *Engine) UpdateTask(ctx context.Context, owner uuid.UUID, taskID uuid.UUID, input TaskInput) (entity.Task, error) {
	task, err := e.Task(ctx, owner, taskID)
	if err != nil {
		return entity.Task{}, err
	}
	task.Name = input.Name
	task.Description = input.Description
	task.CategoryID = input.CategoryID
	task.Deadline = input.Deadline
	task.PlannedDuration = input.PlannedDuration
	if err := entity.Validate(task); err != nil {
		return entity.Task{}, store.Invalid("task: %v", err)
	}
	if err := e.tasks.SaveTask(ctx, task); err != nil {
		return entity.Task{}, err
	}
	return task, nil
}

// CategoryInput carries the user-editable category fields. Color is
// the hex value submitted by the form.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// CreateCategory stores a custom category for the owner, converting
// the submitted hex color to the stored rgba form.
func (e *Engine) CreateCategory(ctx context.Context, owner uuid.UUID, input CategoryInput) (entity.Category, error) {
	rgba, err := colors.HexToRGBA(input.Color)
	if err != nil {
		return entity.Category{}, store.Invalid("category color: %v", err)
	}

	cat := entity.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Color:       rgba,
		OwnerID:     &owner,
		IsCustom:    true,
	}
	if err := entity.Validate(cat); err != nil {
		return entity.Category{}, store.Invalid("category: %v", err)
	}
	if err := e.categories.CreateCategory(ctx, cat); err != nil {
		return entity.Category{}, err
	}
	return cat, nil
}

// UpdateCategory saves edits to an owned custom category.
func (e *Engine) UpdateCategory(ctx context.Context, owner, categoryID uuid.UUID, input CategoryInput) (entity.Category, error) {
	cat, err := e.Category(ctx, owner, categoryID)
	if err != nil {
		return entity.Category{}, err
	}
	rgba, err := colors.HexToRGBA(input.Color)
	if err != nil {
		return entity.Category{}, store.Invalid("category color: %v", err)
	}
	cat.Name = input.Name
	cat.Description = input.Description
	cat.Color = rgba
	if err := entity.Validate(cat); err != nil {
		return entity.Category{}, store.Invalid("category: %v", err)
	}
	if err := e.categories.SaveCategory(ctx, cat); err != nil {
		return entity.Category{}, err
	}
	return cat, nil
}

// DeleteCategory removes an owned custom category and, through the
// store, every task depending on it. System categories never pass the
// ownership check.
func (e *Engine) DeleteCategory(ctx context.Context, owner, categoryID uuid.UUID) error {
	cat, err := e.Category(ctx, owner, categoryID)
	if err != nil {
		return err
	}
	return e.categories.DeleteCategory(ctx, cat)
}

// CategoryHexColor returns a category's color as hex for form prefill.
func (e *Engine) CategoryHexColor(ctx context.Context, categoryID uuid.UUID) (string, error) {
	cat, err := e.categories.CategoryByID(ctx, categoryID)
	if err != nil {
		return "", err
	}
	hex, err := colors.RGBAToHex(cat.Color)
	if err != nil {
		return "", fmt.Errorf("category %s: %w", categoryID, err)
	}
	return hex, nil
}

// RandomColor proposes a hex color for a new category.
func (e *Engine) RandomColor() string {
	return colors.RandomHex()
}

// RGBAFromHex converts a submitted hex color to the stored rgba form.
func (e *Engine) RGBAFromHex(hex string) (string, error) {
	rgba, err := colors.HexToRGBA(hex)
	if err != nil {
		return "", store.Invalid("color: %v", err)
	}
	return rgba, nil
}

// TaskCountByCategory counts the owner's active tasks per category.
func (e *Engine) TaskCountByCategory(ctx context.Context, owner uuid.UUID) ([]store.CategoryCount, error) {
	return e.tasks.CountByCategory(ctx, owner)
}

// DeadlineEntry is one category's share of the tasks due on a day.
type DeadlineEntry struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// DeadlineCalendar groups active tasks with a deadline by day, keyed
// "2006.01.02".
func (e *Engine) DeadlineCalendar(ctx context.Context, owner uuid.UUID) (map[string][]DeadlineEntry, error) {
	counts, err := e.tasks.DeadlineCounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	calendar := make(map[string][]DeadlineEntry)
	for _, row := range counts {
		day := row.Deadline.Format("2006.01.02")
		calendar[day] = append(calendar[day], DeadlineEntry{
			Category: row.Name,
			Color:    row.Color,
			Count:    row.Count,
		})
	}
	return calendar, nil
}
