// Package store defines the capability interfaces the engines depend
// on. Any backing persistence that satisfies them is valid; the
// postgres subpackage is the production implementation and the engine
// tests carry in-memory fakes.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskline/internal/dates"
	"taskline/internal/entity"
)

// CategoryCount is one category bucket of a count aggregate.
type CategoryCount struct {
	Name  string `db:"name"`
	Color string `db:"color"`
	Count int    `db:"count"`
}

// CategoryValue is one category bucket of an averaged aggregate.
type CategoryValue struct {
	Name  string  `db:"name"`
	Color string  `db:"color"`
	Value float64 `db:"value"`
}

// DeadlineCount is the number of active tasks of one category due on
// one day.
type DeadlineCount struct {
	Deadline time.Time `db:"deadline"`
	Name     string    `db:"name"`
	Color    string    `db:"color"`
	Count    int       `db:"count"`
}

// SplitCount is a two-bucket aggregate result.
type SplitCount struct {
	Successful int `db:"successful"`
	Failed     int `db:"failed"`
}

// WeekdayCount holds history row counts per ISO weekday, Monday first.
type WeekdayCount [7]int

// TaskStore owns the active-task relation.
type TaskStore interface {
	// OrderedTasks returns the owner's active tasks ascending by rank.
	OrderedTasks(ctx context.Context, owner uuid.UUID) ([]entity.Task, error)
	// TaskByID returns ErrNotFound when the task does not exist.
	TaskByID(ctx context.Context, id uuid.UUID) (entity.Task, error)
	// CreateTask inserts a new task.
	CreateTask(ctx context.Context, task entity.Task) error
	// SaveTask upserts by id.
	SaveTask(ctx context.Context, task entity.Task) error
	// CountByCategory counts active tasks per category, ascending by
	// count.
	CountByCategory(ctx context.Context, owner uuid.UUID) ([]CategoryCount, error)
	// DeadlineCounts groups active tasks with a deadline by day and
	// category.
	DeadlineCounts(ctx context.Context, owner uuid.UUID) ([]DeadlineCount, error)
	// InTx runs fn against a transaction-scoped view of the store.
	// All writes commit or roll back together.
	InTx(ctx context.Context, fn func(TaskStore) error) error
}

// CategoryStore owns the category relation.
type CategoryStore interface {
	CategoryByID(ctx context.Context, id uuid.UUID) (entity.Category, error)
	// OrderedCategories lists system categories first, then the
	// owner's custom ones, with a stable name tiebreak.
	OrderedCategories(ctx context.Context, owner uuid.UUID) ([]entity.Category, error)
	CreateCategory(ctx context.Context, cat entity.Category) error
	SaveCategory(ctx context.Context, cat entity.Category) error
	// DeleteCategory removes the category; its tasks go with it.
	DeleteCategory(ctx context.Context, cat entity.Category) error
}

// HistoryStore owns the append-only history relation. The three Record
// operations atomically delete the source task and insert one history
// row stamped with the current date; there is no observable state with
// the task in neither or both relations.
type HistoryStore interface {
	RecordSuccessful(ctx context.Context, task entity.Task, execution time.Duration) error
	RecordOutOfDeadline(ctx context.Context, task entity.Task, execution time.Duration) error
	RecordFailed(ctx context.Context, task entity.Task, execution time.Duration) error

	// HistoryCountByCategory counts history rows per category, ascending by
	// count.
	HistoryCountByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]CategoryCount, error)
	// OverallAccuracy averages the symmetric planned/execution ratio
	// over all rows, rows with a zero duration contributing 0, rounded
	// to two decimals. Zero when the owner has no history.
	OverallAccuracy(ctx context.Context, owner uuid.UUID, rng dates.Range) (float64, error)
	// AccuracyByCategory is the same ratio grouped by category,
	// ascending, with zero-duration rows excluded instead of zeroed.
	AccuracyByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]CategoryValue, error)
	// SuccessRate counts rows with status FAILED as failed and
	// everything else, out-of-deadline included, as successful.
	SuccessRate(ctx context.Context, owner uuid.UUID, rng dates.Range) (SplitCount, error)
	// SuccessRateByCategory counts non-failed rows per category.
	SuccessRateByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]CategoryCount, error)
	// CountByWeekday counts rows per ISO weekday, zero-filled.
	CountByWeekday(ctx context.Context, owner uuid.UUID, rng dates.Range) (WeekdayCount, error)
	// PlanningSplit counts rows whose planned and execution durations
	// match exactly against those that differ.
	PlanningSplit(ctx context.Context, owner uuid.UUID, rng dates.Range) (SplitCount, error)
	// PlanningByCategory counts exactly-planned rows per category.
	PlanningByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]CategoryCount, error)
}

// SnapshotStore owns the shared statistics snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap entity.Snapshot) error
	SnapshotByKey(ctx context.Context, key string) (entity.Snapshot, error)
}
