// Package analytics shapes the history aggregates into the uniform
// label/color/data series the presentation layer charts, and freezes
// payloads into shareable snapshots.
package analytics

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskline/internal/dates"
	"taskline/internal/entity"
	"taskline/internal/store"
)

// Fixed two-bucket chart colors, green for the positive bucket and red
// for the negative one.
const (
	colorPositive = "rgba(0, 255, 0, 0.4)"
	colorNegative = "rgba(255, 0, 0, 0.4)"
)

var weekdayLabels = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Series is one chart: parallel labels, optional colors and values.
type Series struct {
	Labels []string  `json:"labels"`
	Colors []string  `json:"colors,omitempty"`
	Data   []float64 `json:"data"`
}

// Payload carries all eight statistics series.
type Payload struct {
	TaskCounts          Series `json:"task_counts"`
	Accuracy            Series `json:"accuracy"`
	CategoryAccuracy    Series `json:"category_accuracy"`
	SuccessRate         Series `json:"success_rate"`
	CategorySuccessRate Series `json:"category_success_rate"`
	WeekdayCounts       Series `json:"weekday_counts"`
	Planning            Series `json:"planning"`
	CategoryPlanning    Series `json:"category_planning"`
}

// Engine reads the history aggregates and owns snapshot persistence.
type Engine struct {
	history   store.HistoryStore
	snapshots store.SnapshotStore
}

func NewEngine(history store.HistoryStore, snapshots store.SnapshotStore) *Engine {
	return &Engine{history: history, snapshots: snapshots}
}

// Statistics assembles the full payload for one owner, optionally
// restricted to a closed execution-date interval.
func (e *Engine) Statistics(ctx context.Context, owner uuid.UUID, rng dates.Range) (Payload, error) {
	if err := rng.Validate(); err != nil {
		return Payload{}, store.Invalid("date range: %v", err)
	}

	var payload Payload

	counts, err := e.history.HistoryCountByCategory(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.TaskCounts = categoryCountSeries(counts)

	accuracy, err := e.history.OverallAccuracy(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	// Inaccuracy is complementary by definition, so it is derived
	// rather than queried.
	payload.Accuracy = Series{
		Labels: []string{"accuracy", "inaccuracy"},
		Colors: []string{colorPositive, colorNegative},
		Data:   []float64{accuracy, 100 - accuracy},
	}

	categoryAccuracy, err := e.history.AccuracyByCategory(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.CategoryAccuracy = categoryValueSeries(categoryAccuracy)

	successRate, err := e.history.SuccessRate(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.SuccessRate = splitSeries(successRate, "successful", "failed")

	categorySuccess, err := e.history.SuccessRateByCategory(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.CategorySuccessRate = categoryCountSeries(categorySuccess)

	weekdays, err := e.history.CountByWeekday(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.WeekdayCounts = weekdaySeries(weekdays)

	planning, err := e.history.PlanningSplit(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.Planning = splitSeries(planning, "planned", "misplanned")

	categoryPlanning, err := e.history.PlanningByCategory(ctx, owner, rng)
	if err != nil {
		return Payload{}, err
	}
	payload.CategoryPlanning = categoryCountSeries(categoryPlanning)

	return payload, nil
}

// Share freezes the current statistics view under a fresh short key.
// The snapshot is a cache: later history changes never touch it.
func (e *Engine) Share(ctx context.Context, owner uuid.UUID, rng dates.Range) (string, error) {
	payload, err := e.Statistics(ctx, owner, rng)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode statistics: %w", err)
	}

	key, err := newKey()
	if err != nil {
		return "", err
	}

	snap := entity.Snapshot{
		Key:        key,
		OwnerID:    owner,
		From:       rng.From,
		To:         rng.To,
		Statistics: raw,
	}
	if err := e.snapshots.SaveSnapshot(ctx, snap); err != nil {
		return "", err
	}
	return key, nil
}

// Shared returns the frozen payload stored under key.
func (e *Engine) Shared(ctx context.Context, key string) (Payload, error) {
	snap, err := e.snapshots.SnapshotByKey(ctx, key)
	if err != nil {
		return Payload{}, err
	}

	var payload Payload
	if err := json.Unmarshal(snap.Statistics, &payload); err != nil {
		return Payload{}, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return payload, nil
}

// newKey returns a 10-character opaque key.
func newKey() (string, error) {
	var buf [5]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate snapshot key: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

func categoryCountSeries(counts []store.CategoryCount) Series {
	s := Series{Labels: []string{}, Colors: []string{}, Data: []float64{}}
	for _, row := range counts {
		s.Labels = append(s.Labels, row.Name)
		s.Colors = append(s.Colors, row.Color)
		s.Data = append(s.Data, float64(row.Count))
	}
	return s
}

func categoryValueSeries(values []store.CategoryValue) Series {
	s := Series{Labels: []string{}, Colors: []string{}, Data: []float64{}}
	for _, row := range values {
		s.Labels = append(s.Labels, row.Name)
		s.Colors = append(s.Colors, row.Color)
		s.Data = append(s.Data, row.Value)
	}
	return s
}

func splitSeries(split store.SplitCount, positive, negative string) Series {
	return Series{
		Labels: []string{positive, negative},
		Colors: []string{colorPositive, colorNegative},
		Data:   []float64{float64(split.Successful), float64(split.Failed)},
	}
}

func weekdaySeries(counts store.WeekdayCount) Series {
	s := Series{Labels: weekdayLabels, Data: make([]float64, len(counts))}
	for i, count := range counts {
		s.Data[i] = float64(count)
	}
	return s
}
