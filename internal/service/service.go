// Package service implements todo queries and mutations on top of gorm.
// Handlers, the CLI and the MCP server all go through TodoService; nothing
// else writes to the todo tables.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kutbudev/todoflow/internal/analytics"
	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityObserver is notified after an activity entry has been written.
type ActivityObserver interface {
	ObserveActivity(action string)
}

// TodoService owns every read and write of todos and their satellites.
type TodoService struct {
	db       *gorm.DB
	reporter *analytics.Reporter
	now      func() time.Time
	loc      *time.Location
	observer ActivityObserver
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

// WithLocation sets the timezone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *TodoService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithObserver registers an observer for appended activity entries.
func WithObserver(o ActivityObserver) Option {
	return func(s *TodoService) { s.observer = o }
}

// New creates a TodoService on db.
func New(db *gorm.DB, opts ...Option) (*TodoService, error) {
	reporter, err := analytics.NewReporter(db)
	if err != nil {
		return nil, err
	}
	s := &TodoService{
		db:       db,
		reporter: reporter,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB exposes the underlying handle for health checks.
func (s *TodoService) DB() *gorm.DB {
	return s.db
}

// Location returns the calendar timezone.
func (s *TodoService) Location() *time.Location {
	return s.loc
}

// Now returns the service clock in the calendar timezone.
func (s *TodoService) Now() time.Time {
	return s.localNow()
}

// clock returns the current instant in UTC, the form every timestamp is stored in.
func (s *TodoService) clock() time.Time {
	return s.now().UTC()
}

// localNow returns the current instant in the calendar timezone.
func (s *TodoService) localNow() time.Time {
	return s.now().In(s.loc)
}

// logActivity appends an entry inside tx. details may be nil.
func (s *TodoService) logActivity(tx *gorm.DB, todoID uint, userID *uint, action string, details map[string]interface{}) error {
	entry := models.ActivityLog{
		TodoID:    todoID,
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSONMap(details),
		CreatedAt: s.clock(),
	}
	if entry.Details == nil {
		entry.Details = datatypes.JSONMap{}
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to log %s activity for todo %d: %w", action, todoID, err)
	}
	if pending, ok := tx.Statement.Context.Value(pendingActivityKey{}).(*[]string); ok {
		*pending = append(*pending, action)
	} else if s.observer != nil {
		s.observer.ObserveActivity(action)
	}
	return nil
}

// scopeToUser restricts q to todos created by or assigned to userID.
func scopeToUser(q *gorm.DB, userID *uint) *gorm.DB {
	if userID == nil {
		return q
	}
	assigned := q.Session(&gorm.Session{NewDB: true}).
		Table("todo_assignees").
		Select("todo_id").
		Where("user_id = ?", *userID)
	return q.Where("(created_by_id = ? OR id IN (?))", *userID, assigned)
}

// findTodo loads the bare todo row.
func findTodo(tx *gorm.DB, id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := tx.First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("todo", id)
		}
		return nil, fmt.Errorf("failed to get todo %d: %w", id, err)
	}
	return &todo, nil
}

type pendingActivityKey struct{}

// tx runs fn in a transaction. Activity logged inside it reaches the
// observer only after commit.
func (s *TodoService) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var pending []string
	ctx = context.WithValue(ctx, pendingActivityKey{}, &pending)
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	if s.observer != nil {
		for _, action := range pending {
			s.observer.ObserveActivity(action)
		}
	}
	return nil
}
