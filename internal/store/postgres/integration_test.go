package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskline/internal/dates"
	"taskline/internal/entity"
)

// The accuracy and weekday aggregates live in SQL, so their arithmetic
// can only be exercised against a real database. These tests run when
// TASKLINE_TEST_DATABASE_URL points at a postgres instance and are
// skipped in short mode.

func newLiveStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TASKLINE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TASKLINE_TEST_DATABASE_URL not set")
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := Open(log, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedCategory(t *testing.T, st *Store, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	const q = `
		INSERT INTO categories (id, name, description, color, owner_id, is_custom)
		VALUES ($1, $2, '', 'rgba(1, 2, 3, 0.4)', $3, TRUE)`
	_, err := st.q.ExecContext(context.Background(), q, id, name, owner)
	require.NoError(t, err)
	return id
}

func seedRecord(t *testing.T, st *Store, owner, category uuid.UUID, planned, execution time.Duration, day time.Time, status entity.Status) {
	t.Helper()

	const q = `
		INSERT INTO history (id, name, category_id, owner_id, planned_duration, execution_duration, execution_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := st.q.ExecContext(context.Background(), q,
		uuid.New(), "seeded", category, owner, planned, execution, day, status)
	require.NoError(t, err)
}

func TestOverallAccuracyArithmetic(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("zero duration averages in as zero", func(t *testing.T) {
		owner := uuid.New()
		cat := seedCategory(t, st, owner, "arith")
		// one row at ratio 50, one zero-duration row at 0
		seedRecord(t, st, owner, cat, 2*time.Hour, time.Hour, day, entity.StatusSuccessful)
		seedRecord(t, st, owner, cat, time.Hour, 0, day, entity.StatusFailed)

		value, err := st.OverallAccuracy(ctx, owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, 25.0, value)
	})

	t.Run("exact match contributes 100", func(t *testing.T) {
		owner := uuid.New()
		cat := seedCategory(t, st, owner, "arith")
		seedRecord(t, st, owner, cat, time.Hour, time.Hour, day, entity.StatusSuccessful)
		seedRecord(t, st, owner, cat, 2*time.Hour, time.Hour, day, entity.StatusSuccessful)

		value, err := st.OverallAccuracy(ctx, owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, 75.0, value)
	})

	t.Run("ratio is symmetric in planned and execution", func(t *testing.T) {
		owner := uuid.New()
		cat := seedCategory(t, st, owner, "arith")
		seedRecord(t, st, owner, cat, time.Hour, 2*time.Hour, day, entity.StatusSuccessful)
		seedRecord(t, st, owner, cat, 2*time.Hour, time.Hour, day, entity.StatusSuccessful)

		value, err := st.OverallAccuracy(ctx, owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, 50.0, value)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		owner := uuid.New()
		cat := seedCategory(t, st, owner, "arith")
		seedRecord(t, st, owner, cat, 3*time.Hour, time.Hour, day, entity.StatusSuccessful)

		value, err := st.OverallAccuracy(ctx, owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, 33.33, value)
	})

	t.Run("no history is zero", func(t *testing.T) {
		value, err := st.OverallAccuracy(ctx, uuid.New(), dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, value)
	})
}

func TestAccuracyByCategoryArithmetic(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()
	owner := uuid.New()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	// mixed: a zero-duration row next to a ratio-50 row
	mixed := seedCategory(t, st, owner, "mixed")
	seedRecord(t, st, owner, mixed, 2*time.Hour, time.Hour, day, entity.StatusSuccessful)
	seedRecord(t, st, owner, mixed, time.Hour, 0, day, entity.StatusFailed)
	// zeros: only zero-duration rows
	zeros := seedCategory(t, st, owner, "zeros")
	seedRecord(t, st, owner, zeros, 0, time.Hour, day, entity.StatusSuccessful)

	values, err := st.AccuracyByCategory(ctx, owner, dates.Range{})
	require.NoError(t, err)
	require.Len(t, values, 2)

	// ascending by value: the all-NULL category coalesces to 0, and the
	// mixed one averages 50 because the zero row is excluded, not zeroed
	assert.Equal(t, "zeros", values[0].Name)
	assert.Equal(t, 0.0, values[0].Value)
	assert.Equal(t, "mixed", values[1].Name)
	assert.Equal(t, 50.0, values[1].Value)
}

func TestCountByWeekdayOnPostgres(t *testing.T) {
	st := newLiveStore(t)
	ctx := context.Background()
	owner := uuid.New()
	cat := seedCategory(t, st, owner, "week")

	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	seedRecord(t, st, owner, cat, time.Hour, time.Hour, monday, entity.StatusSuccessful)
	seedRecord(t, st, owner, cat, time.Hour, time.Hour, monday, entity.StatusFailed)
	seedRecord(t, st, owner, cat, time.Hour, time.Hour, wednesday, entity.StatusSuccessful)

	// another owner's saturday row must not leak in
	other := uuid.New()
	otherCat := seedCategory(t, st, other, "week")
	saturday := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	seedRecord(t, st, other, otherCat, time.Hour, time.Hour, saturday, entity.StatusSuccessful)

	t.Run("empty weekdays survive the owner filter", func(t *testing.T) {
		counts, err := st.CountByWeekday(ctx, owner, dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, [7]int{2, 0, 1, 0, 0, 0, 0}, [7]int(counts))
	})

	t.Run("range bounds apply in the join", func(t *testing.T) {
		counts, err := st.CountByWeekday(ctx, owner, dates.Range{From: &wednesday})
		require.NoError(t, err)
		assert.Equal(t, [7]int{0, 0, 1, 0, 0, 0, 0}, [7]int(counts))
	})

	t.Run("no history is seven zeroes", func(t *testing.T) {
		counts, err := st.CountByWeekday(ctx, uuid.New(), dates.Range{})
		require.NoError(t, err)
		assert.Equal(t, [7]int{}, [7]int(counts))
	})
}
