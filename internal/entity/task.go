package entity

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Task is an active task on an owner's list. Order is a dense 1-based
// rank, unique per owner among active tasks.
type Task struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	Name            string        `db:"name" json:"name" validate:"required,max=290"`
	Description     string        `db:"description" json:"description,omitempty"`
	Order           int           `db:"position" json:"order" validate:"min=1"`
	CategoryID      uuid.UUID     `db:"category_id" json:"category_id" validate:"required"`
	OwnerID         uuid.UUID     `db:"owner_id" json:"owner_id" validate:"required"`
	Deadline        *time.Time    `db:"deadline" json:"deadline,omitempty"`
	PlannedDuration time.Duration `db:"planned_duration" json:"planned_duration" validate:"min=0"`
}

// Category groups tasks. System categories are shared, have no owner
// and IsCustom false; user categories always carry both.
type Category struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name" validate:"required,max=100"`
	Description string     `db:"description" json:"description,omitempty"`
	Color       string     `db:"color" json:"color" validate:"required,max=40"`
	OwnerID     *uuid.UUID `db:"owner_id" json:"owner_id,omitempty"`
	IsCustom    bool       `db:"is_custom" json:"is_custom"`
}

var validate = validator.New()

// Validate checks struct-level validation tags.
func Validate(v any) error {
	return validate.Struct(v)
}
