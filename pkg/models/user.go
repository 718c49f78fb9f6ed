package models

import "time"

// User is a person who creates, is assigned to, or comments on todos.
type User struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	Username             string    `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Email                string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	FullName             *string   `json:"full_name,omitempty" gorm:"size:100"`
	AvatarURL            *string   `json:"avatar_url,omitempty"`
	IsActive             bool      `json:"is_active" gorm:"not null;default:true"`
	Theme                string    `json:"theme" gorm:"size:20;not null;default:light"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"not null;default:true"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Comment represents a note left on a todo. Comments are owned by their todo.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TodoID    uint      `json:"todo_id" gorm:"not null;index"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
