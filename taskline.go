// Package taskline is the public surface of the task tracker core. A
// Tracker wires the lifecycle and analytics engines over a store and
// exposes the operations the presentation layer calls, taking ids as
// the strings it receives over the wire.
package taskline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskline/internal/analytics"
	"taskline/internal/dates"
	"taskline/internal/entity"
	"taskline/internal/lifecycle"
	"taskline/internal/store"
)

// Version is the released version of taskline.
const Version = "0.3.0"

// Stores bundles the capability interfaces a Tracker runs on.
type Stores struct {
	Tasks      store.TaskStore
	Categories store.CategoryStore
	History    store.HistoryStore
	Snapshots  store.SnapshotStore
}

// Tracker is the façade handed to the presentation layer.
type Tracker struct {
	Lifecycle *lifecycle.Engine
	Analytics *analytics.Engine
}

// New builds a Tracker from its store dependencies. There is no
// process-wide instance; callers construct one at the boundary.
func New(stores Stores) *Tracker {
	return &Tracker{
		Lifecycle: lifecycle.NewEngine(stores.Tasks, stores.Categories, stores.History),
		Analytics: analytics.NewEngine(stores.History, stores.Snapshots),
	}
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, store.Invalid("%s id %q: %v", kind, raw, err)
	}
	return id, nil
}

// OrderedTasks returns the owner's active tasks ascending by rank.
func (t *Tracker) OrderedTasks(ctx context.Context, owner uuid.UUID) ([]entity.Task, error) {
	return t.Lifecycle.OrderedTasks(ctx, owner)
}

// Categories returns the categories visible to the owner.
func (t *Tracker) Categories(ctx context.Context, owner uuid.UUID) ([]entity.Category, error) {
	return t.Lifecycle.OrderedCategories(ctx, owner)
}

// Reorder re-ranks the owner's active tasks to match ids, which must
// list the complete active set.
func (t *Tracker) Reorder(ctx context.Context, owner uuid.UUID, ids []string) error {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := parseID("task", raw)
		if err != nil {
			return err
		}
		parsed = append(parsed, id)
	}
	return t.Lifecycle.Reorder(ctx, owner, parsed)
}

// CompleteTask retires the task as completed, classifying it against
// its deadline.
func (t *Tracker) CompleteTask(ctx context.Context, owner uuid.UUID, taskID string, execution time.Duration) error {
	id, err := parseID("task", taskID)
	if err != nil {
		return err
	}
	return t.Lifecycle.CompleteTask(ctx, owner, id, execution)
}

// FailTask retires the task as failed.
func (t *Tracker) FailTask(ctx context.Context, owner uuid.UUID, taskID string, execution time.Duration) error {
	id, err := parseID("task", taskID)
	if err != nil {
		return err
	}
	return t.Lifecycle.FailTask(ctx, owner, id, execution)
}

// Statistics returns the owner's eight-series payload, optionally
// bounded to [from, to] over execution dates.
func (t *Tracker) Statistics(ctx context.Context, owner uuid.UUID, from, to *time.Time) (analytics.Payload, error) {
	return t.Analytics.Statistics(ctx, owner, dates.Range{From: from, To: to})
}

// ShareStatistics freezes the current view and returns its share key.
func (t *Tracker) ShareStatistics(ctx context.Context, owner uuid.UUID, from, to *time.Time) (string, error) {
	return t.Analytics.Share(ctx, owner, dates.Range{From: from, To: to})
}

// SharedStatistics returns the frozen payload stored under key.
func (t *Tracker) SharedStatistics(ctx context.Context, key string) (analytics.Payload, error) {
	return t.Analytics.Shared(ctx, key)
}
