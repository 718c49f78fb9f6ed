package models

import "time"

// DefaultColor is used for tags and categories created without a color.
const DefaultColor = "#6B7280"

// Tag represents a tag in the system
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Color     string    `json:"color" gorm:"size:7;not null;default:'#6B7280'"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups todos. Todos reference categories but never own them.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Color     string    `json:"color" gorm:"size:7;not null;default:'#6B7280'"`
	Icon      *string   `json:"icon,omitempty" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Category) TableName() string {
	return "categories"
}
