package models

import "time"

// Notification kinds.
const (
	NotificationReminder = "reminder"
	NotificationInfo     = "info"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	TodoID    *uint     `json:"todo_id,omitempty" gorm:"index"`
	Kind      string    `json:"kind" gorm:"size:20;not null;default:info"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

// Analytics is a per-day productivity rollup, optionally scoped to a user.
// UserID 0 holds the rollup across all users.
type Analytics struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"not null;default:0;uniqueIndex:idx_analytics_user_date"`
	Date               string    `json:"date" gorm:"size:10;not null;uniqueIndex:idx_analytics_user_date"`
	TasksCompleted     int       `json:"tasks_completed"`
	TasksCreated       int       `json:"tasks_created"`
	MinutesTracked     int       `json:"minutes_tracked"`
	PomodorosCompleted int       `json:"pomodoros_completed"`
	ProductivityScore  float64   `json:"productivity_score"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Analytics) TableName() string {
	return "analytics"
}
