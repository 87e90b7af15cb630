package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskline/internal/dates"
	"taskline/internal/entity"
	"taskline/internal/store"
)

func retirableTask(owner uuid.UUID) entity.Task {
	return entity.Task{
		ID:              uuid.New(),
		Name:            "write report",
		Order:           1,
		CategoryID:      uuid.New(),
		OwnerID:         owner,
		PlannedDuration: time.Hour,
	}
}

func TestRecordSuccessful(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()
	task := retirableTask(owner)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(task.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO history .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, CURRENT_DATE, \$7\)`).
		WithArgs(sqlmock.AnyArg(), task.Name, task.CategoryID, task.OwnerID,
			task.PlannedDuration, 45*time.Minute, string(entity.StatusSuccessful)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordSuccessful(context.Background(), task, 45*time.Minute))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutOfDeadlineStatus(t *testing.T) {
	s, mock := newMockStore(t)
	task := retirableTask(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(task.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO history`).
		WithArgs(sqlmock.AnyArg(), task.Name, task.CategoryID, task.OwnerID,
			task.PlannedDuration, time.Hour, string(entity.StatusOutOfDeadline)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordOutOfDeadline(context.Background(), task, time.Hour))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackWhenTaskGone(t *testing.T) {
	s, mock := newMockStore(t)
	task := retirableTask(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(task.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.RecordFailed(context.Background(), task, time.Minute)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockStore(t)
	task := retirableTask(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(task.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO history`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := s.RecordFailed(context.Background(), task, time.Minute)
	assert.ErrorContains(t, err, "constraint violation")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryCountByCategory(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	t.Run("without range", func(t *testing.T) {
		mock.ExpectQuery(`SELECT c.name, c.color, .* FROM history h JOIN categories c`).
			WithArgs(owner).
			WillReturnRows(sqlmock.NewRows([]string{"name", "color", "count"}).
				AddRow("Home", "rgba(255, 159, 64, 0.4)", 1).
				AddRow("Work", "rgba(54, 162, 235, 0.4)", 4))

		counts, err := s.HistoryCountByCategory(context.Background(), owner, dates.Range{})
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "Home", counts[0].Name)
		assert.Equal(t, 4, counts[1].Count)
	})

	t.Run("with range both bounds are bound", func(t *testing.T) {
		from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT c.name, c.color, .* FROM history h JOIN categories c .* h.execution_date >= \$2 .* h.execution_date <= \$3`).
			WithArgs(owner, from, to).
			WillReturnRows(sqlmock.NewRows([]string{"name", "color", "count"}))

		_, err := s.HistoryCountByCategory(context.Background(), owner, dates.Range{From: &from, To: &to})
		require.NoError(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverallAccuracy(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT coalesce\(round\(avg\(CASE .* FROM history h`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(25.0))

	value, err := s.OverallAccuracy(context.Background(), owner, dates.Range{})
	require.NoError(t, err)
	assert.Equal(t, 25.0, value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccuracyByCategory(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT c.name, c.color, coalesce\(round\(avg\(CASE .* ORDER BY value`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"name", "color", "value"}).
			AddRow("Home", "rgba(255, 159, 64, 0.4)", 33.33).
			AddRow("Work", "rgba(54, 162, 235, 0.4)", 80.0))

	values, err := s.AccuracyByCategory(context.Background(), owner, dates.Range{})
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, 33.33, values[0].Value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSuccessRate(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT count.* FROM history h`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"successful", "failed"}).AddRow(7, 2))

	split, err := s.SuccessRate(context.Background(), owner, dates.Range{})
	require.NoError(t, err)
	assert.Equal(t, store.SplitCount{Successful: 7, Failed: 2}, split)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByWeekday(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	t.Run("zero-filled weekdays", func(t *testing.T) {
		mock.ExpectQuery(`SELECT d.idx AS idx, .* FROM generate_series\(1, 7\) AS d\(idx\) LEFT JOIN history h`).
			WithArgs(owner).
			WillReturnRows(sqlmock.NewRows([]string{"idx", "count"}).
				AddRow(1, 0).AddRow(2, 3).AddRow(3, 0).AddRow(4, 1).
				AddRow(5, 0).AddRow(6, 0).AddRow(7, 2))

		counts, err := s.CountByWeekday(context.Background(), owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, store.WeekdayCount{0, 3, 0, 1, 0, 0, 2}, counts)
	})

	t.Run("range bounds land in the join clause", func(t *testing.T) {
		from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`LEFT JOIN history h ON .* AND h.execution_date >= \$2 GROUP BY d.idx`).
			WithArgs(owner, from).
			WillReturnRows(sqlmock.NewRows([]string{"idx", "count"}).
				AddRow(1, 0).AddRow(2, 0).AddRow(3, 0).AddRow(4, 0).
				AddRow(5, 0).AddRow(6, 0).AddRow(7, 0))

		counts, err := s.CountByWeekday(context.Background(), owner, dates.Range{From: &from})
		require.NoError(t, err)
		assert.Equal(t, store.WeekdayCount{}, counts)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanningSplit(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT count.* FILTER .*planned_duration = h.execution_duration.* FROM history h`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"successful", "failed"}).AddRow(3, 5))

	split, err := s.PlanningSplit(context.Background(), owner, dates.Range{})
	require.NoError(t, err)
	assert.Equal(t, store.SplitCount{Successful: 3, Failed: 5}, split)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanningByCategory(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT c.name, c.color, .* FROM history h JOIN categories c .* h.planned_duration = h.execution_duration`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows([]string{"name", "color", "count"}).
			AddRow("Work", "rgba(54, 162, 235, 0.4)", 2))

	counts, err := s.PlanningByCategory(context.Background(), owner, dates.Range{})
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)

	require.NoError(t, mock.ExpectationsWereMet())
}
