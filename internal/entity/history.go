package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state a task retires with.
type Status string

const (
	StatusSuccessful    Status = "SUCCESSFUL"
	StatusOutOfDeadline Status = "OUT_OF_DEADLINE"
	StatusFailed        Status = "FAILED"
)

// Record is one retired task. Rows are append-only: written once when
// the task leaves the active list, never updated. CategoryID goes nil
// if the category is deleted later.
type Record struct {
	ID                uuid.UUID     `db:"id" json:"id"`
	Name              string        `db:"name" json:"name"`
	CategoryID        *uuid.UUID    `db:"category_id" json:"category_id,omitempty"`
	OwnerID           uuid.UUID     `db:"owner_id" json:"owner_id"`
	PlannedDuration   time.Duration `db:"planned_duration" json:"planned_duration"`
	ExecutionDuration time.Duration `db:"execution_duration" json:"execution_duration"`
	ExecutionDate     time.Time     `db:"execution_date" json:"execution_date"`
	Status            Status        `db:"status" json:"status"`
}

// Snapshot is a frozen statistics payload shared under a short key.
// It is a cache, not a live view: underlying history changes never
// regenerate it.
type Snapshot struct {
	Key        string     `db:"key" json:"key"`
	OwnerID    uuid.UUID  `db:"owner_id" json:"owner_id"`
	From       *time.Time `db:"from_date" json:"from_date,omitempty"`
	To         *time.Time `db:"to_date" json:"to_date,omitempty"`
	Statistics []byte     `db:"statistics" json:"statistics"`
}
