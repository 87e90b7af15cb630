package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskline/internal/dates"
	"taskline/internal/entity"
	"taskline/internal/store"
)

// accuracyExpr is the symmetric planned/execution ratio: 100 for an
// exact match, scaled down the further the two drift apart, identical
// in both directions. The zero guard keeps division safe; the two
// variants differ only in what a zero-duration row contributes.
const (
	accuracyExprZero = `CASE
		WHEN planned_duration = 0 OR execution_duration = 0 THEN 0
		ELSE least(planned_duration, execution_duration)::numeric
			/ greatest(planned_duration, execution_duration) * 100
	END`
	accuracyExprNull = `CASE
		WHEN planned_duration = 0 OR execution_duration = 0 THEN NULL
		ELSE least(planned_duration, execution_duration)::numeric
			/ greatest(planned_duration, execution_duration) * 100
	END`
)

func (s *Store) RecordSuccessful(ctx context.Context, task entity.Task, execution time.Duration) error {
	return s.record(ctx, task, execution, entity.StatusSuccessful)
}

func (s *Store) RecordOutOfDeadline(ctx context.Context, task entity.Task, execution time.Duration) error {
	return s.record(ctx, task, execution, entity.StatusOutOfDeadline)
}

func (s *Store) RecordFailed(ctx context.Context, task entity.Task, execution time.Duration) error {
	return s.record(ctx, task, execution, entity.StatusFailed)
}

// record retires a task: the delete from the active list and the
// history insert commit or roll back together, so no reader ever sees
// the task in both relations or neither.
func (s *Store) record(ctx context.Context, task entity.Task, execution time.Duration, status entity.Status) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID)
		if err != nil {
			return fmt.Errorf("retire task: %w", err)
		}
		if aff, _ := res.RowsAffected(); aff == 0 {
			return store.E("history.record", "task", store.ErrNotFound)
		}

		const q = `
			INSERT INTO history (id, name, category_id, owner_id, planned_duration, execution_duration, execution_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, CURRENT_DATE, $7)`

		_, err = tx.ExecContext(ctx, q,
			uuid.New(), task.Name, task.CategoryID, task.OwnerID,
			task.PlannedDuration, execution, status)
		if err != nil {
			return fmt.Errorf("insert history row: %w", err)
		}

		s.log.Debug("task retired", "task", task.ID, "status", status)
		return nil
	})
}

func (s *Store) HistoryCountByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]store.CategoryCount, error) {
	q, args, err := s.builder().
		Select("c.name", "c.color", "count(h.id) AS count").
		From("history h").
		Join("categories c ON h.category_id = c.id").
		Where(historyScope(owner, rng)).
		GroupBy("c.name", "c.color").
		OrderBy("count(h.id)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category count query: %w", err)
	}

	var counts []store.CategoryCount
	if err := sqlx.SelectContext(ctx, s.q, &counts, q, args...); err != nil {
		return nil, fmt.Errorf("count history by category: %w", err)
	}
	return counts, nil
}

func (s *Store) OverallAccuracy(ctx context.Context, owner uuid.UUID, rng dates.Range) (float64, error) {
	q, args, err := s.builder().
		Select("coalesce(round(avg("+accuracyExprZero+"), 2), 0) AS value").
		From("history h").
		Where(historyScope(owner, rng)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build accuracy query: %w", err)
	}

	var value float64
	if err := sqlx.GetContext(ctx, s.q, &value, q, args...); err != nil {
		return 0, fmt.Errorf("overall accuracy: %w", err)
	}
	return value, nil
}

func (s *Store) AccuracyByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]store.CategoryValue, error) {
	q, args, err := s.builder().
		Select("c.name", "c.color", "coalesce(round(avg("+accuracyExprNull+"), 2), 0) AS value").
		From("history h").
		Join("categories c ON h.category_id = c.id").
		Where(historyScope(owner, rng)).
		GroupBy("c.name", "c.color").
		OrderBy("value").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category accuracy query: %w", err)
	}

	var values []store.CategoryValue
	if err := sqlx.SelectContext(ctx, s.q, &values, q, args...); err != nil {
		return nil, fmt.Errorf("accuracy by category: %w", err)
	}
	return values, nil
}

// SuccessRate splits history into failed rows and everything else.
// Only status FAILED lands in the failed bucket; out-of-deadline rows
// count as successful.
func (s *Store) SuccessRate(ctx context.Context, owner uuid.UUID, rng dates.Range) (store.SplitCount, error) {
	q, args, err := s.builder().
		Select(
			"count(*) - count(*) FILTER (WHERE h.status = 'FAILED') AS successful",
			"count(*) FILTER (WHERE h.status = 'FAILED') AS failed",
		).
		From("history h").
		Where(historyScope(owner, rng)).
		ToSql()
	if err != nil {
		return store.SplitCount{}, fmt.Errorf("build success rate query: %w", err)
	}

	var split store.SplitCount
	if err := sqlx.GetContext(ctx, s.q, &split, q, args...); err != nil {
		return store.SplitCount{}, fmt.Errorf("success rate: %w", err)
	}
	return split, nil
}

func (s *Store) SuccessRateByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]store.CategoryCount, error) {
	q, args, err := s.builder().
		Select("c.name", "c.color", "count(*) - count(*) FILTER (WHERE h.status = 'FAILED') AS count").
		From("history h").
		Join("categories c ON h.category_id = c.id").
		Where(historyScope(owner, rng)).
		GroupBy("c.name", "c.color").
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category success rate query: %w", err)
	}

	var counts []store.CategoryCount
	if err := sqlx.SelectContext(ctx, s.q, &counts, q, args...); err != nil {
		return nil, fmt.Errorf("success rate by category: %w", err)
	}
	return counts, nil
}

// CountByWeekday returns row counts for all seven ISO weekdays. The
// owner and date filters live in the join condition: putting them in
// WHERE would collapse the left join and drop empty weekdays.
func (s *Store) CountByWeekday(ctx context.Context, owner uuid.UUID, rng dates.Range) (store.WeekdayCount, error) {
	join := "LEFT JOIN history h ON extract(isodow FROM h.execution_date) = d.idx AND h.owner_id = ?"
	args := []any{owner}
	if rng.From != nil {
		join += " AND h.execution_date >= ?"
		args = append(args, *rng.From)
	}
	if rng.To != nil {
		join += " AND h.execution_date <= ?"
		args = append(args, *rng.To)
	}

	q, args, err := s.builder().
		Select("d.idx AS idx", "count(h.id) AS count").
		From("generate_series(1, 7) AS d(idx)").
		JoinClause(join, args...).
		GroupBy("d.idx").
		OrderBy("d.idx").
		ToSql()
	if err != nil {
		return store.WeekdayCount{}, fmt.Errorf("build weekday query: %w", err)
	}

	rows, err := s.q.QueryxContext(ctx, q, args...)
	if err != nil {
		return store.WeekdayCount{}, fmt.Errorf("count history by weekday: %w", err)
	}
	defer rows.Close()

	var counts store.WeekdayCount
	for rows.Next() {
		var idx, count int
		if err := rows.Scan(&idx, &count); err != nil {
			return store.WeekdayCount{}, fmt.Errorf("scan weekday row: %w", err)
		}
		if idx < 1 || idx > 7 {
			return store.WeekdayCount{}, fmt.Errorf("weekday index %d out of range", idx)
		}
		counts[idx-1] = count
	}
	if err := rows.Err(); err != nil {
		return store.WeekdayCount{}, fmt.Errorf("read weekday rows: %w", err)
	}
	return counts, nil
}

func (s *Store) PlanningSplit(ctx context.Context, owner uuid.UUID, rng dates.Range) (store.SplitCount, error) {
	q, args, err := s.builder().
		Select(
			"count(*) FILTER (WHERE h.planned_duration = h.execution_duration) AS successful",
			"count(*) FILTER (WHERE h.planned_duration <> h.execution_duration) AS failed",
		).
		From("history h").
		Where(historyScope(owner, rng)).
		ToSql()
	if err != nil {
		return store.SplitCount{}, fmt.Errorf("build planning query: %w", err)
	}

	var split store.SplitCount
	if err := sqlx.GetContext(ctx, s.q, &split, q, args...); err != nil {
		return store.SplitCount{}, fmt.Errorf("planning split: %w", err)
	}
	return split, nil
}

func (s *Store) PlanningByCategory(ctx context.Context, owner uuid.UUID, rng dates.Range) ([]store.CategoryCount, error) {
	scope := historyScope(owner, rng)
	scope = append(scope, sq.Expr("h.planned_duration = h.execution_duration"))

	q, args, err := s.builder().
		Select("c.name", "c.color", "count(h.id) AS count").
		From("history h").
		Join("categories c ON h.category_id = c.id").
		Where(scope).
		GroupBy("c.name", "c.color").
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category planning query: %w", err)
	}

	var counts []store.CategoryCount
	if err := sqlx.SelectContext(ctx, s.q, &counts, q, args...); err != nil {
		return nil, fmt.Errorf("planning by category: %w", err)
	}
	return counts, nil
}
