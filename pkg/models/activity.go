package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity actions recorded in the log.
const (
	ActionCreated           = "created"
	ActionUpdated           = "updated"
	ActionDeleted           = "deleted"
	ActionBulkUpdated       = "bulk_updated"
	ActionTimerStarted      = "timer_started"
	ActionTimerStopped      = "timer_stopped"
	ActionPomodoroCompleted = "pomodoro_completed"
	ActionTemplateCreated   = "template_created"
	ActionRecurringCreated  = "recurring_created"
	ActionCommented         = "commented"
)

// ErrActivityImmutable is returned by the gorm hooks when something tries to
// rewrite or remove an activity entry.
var ErrActivityImmutable = errors.New("activity log entries are append-only")

// ActivityLog is an append-only audit record of a mutation on a todo.
// TodoID is kept after the todo is deleted.
type ActivityLog struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	TodoID    uint              `json:"todo_id" gorm:"not null;index"`
	UserID    *uint             `json:"user_id,omitempty" gorm:"index"`
	Action    string            `json:"action" gorm:"size:50;not null;index"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
}

// FieldChange is the before/after pair stored for each field an update touched.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (ActivityLog) BeforeUpdate(*gorm.DB) error { return ErrActivityImmutable }

func (ActivityLog) BeforeDelete(*gorm.DB) error { return ErrActivityImmutable }
