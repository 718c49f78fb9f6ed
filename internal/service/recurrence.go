package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// recurrenceDays maps each pattern to a fixed day offset. Months and years
// are 30 and 365 days, not calendar months.
var recurrenceDays = map[models.RecurrencePattern]int{
	models.RecurrenceDaily:   1,
	models.RecurrenceWeekly:  7,
	models.RecurrenceMonthly: 30,
	models.RecurrenceYearly:  365,
}

// NextOccurrence returns due shifted by the pattern's offset. ok is false for
// none or an unknown pattern.
func NextOccurrence(pattern models.RecurrencePattern, due time.Time) (next time.Time, ok bool) {
	days, ok := recurrenceDays[pattern]
	if !ok {
		return time.Time{}, false
	}
	return due.AddDate(0, 0, days), true
}

// CreateRecurringInstance creates the next occurrence of a recurring todo.
// The copy is pending, carries the next due date, keeps tags and assignees
// and points back at the first todo of the series through original_todo_id.
func (s *TodoService) CreateRecurringInstance(ctx context.Context, id uint, userID *uint) (*models.Todo, error) {
	var created *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var src models.Todo
		if err := tx.Preload("Tags").Preload("Assignees").First(&src, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("todo", id)
			}
			return fmt.Errorf("failed to get todo %d: %w", id, err)
		}

		if src.RecurrencePattern == models.RecurrenceNone || src.RecurrencePattern == "" {
			return fmt.Errorf("todo %d does not recur: %w", id, ErrInvalidState)
		}
		if src.DueDate == nil {
			return fmt.Errorf("recurring todo %d has no due date: %w", id, ErrInvalidState)
		}
		next, ok := NextOccurrence(src.RecurrencePattern, *src.DueDate)
		if !ok {
			return fmt.Errorf("todo %d has unknown recurrence %q: %w", id, src.RecurrencePattern, ErrInvalidState)
		}
		if src.RecurrenceEndDate != nil && next.After(*src.RecurrenceEndDate) {
			return fmt.Errorf("todo %d: %w: %w", id, ErrInvalidState, ErrRecurrenceEnded)
		}

		originalID := src.ID
		if src.OriginalTodoID != nil {
			originalID = *src.OriginalTodoID
		}

		now := s.clock()
		todo := models.Todo{
			Title:             src.Title,
			Description:       src.Description,
			Status:            models.StatusPending,
			Priority:          src.Priority,
			DueDate:           &next,
			CategoryID:        src.CategoryID,
			EstimatedDuration: src.EstimatedDuration,
			Notes:             src.Notes,
			ParentID:          src.ParentID,
			Position:          src.Position,
			RecurrencePattern: src.RecurrencePattern,
			RecurrenceEndDate: src.RecurrenceEndDate,
			OriginalTodoID:    &originalID,
			PomodoroTarget:    src.PomodoroTarget,
			CreatedByID:       src.CreatedByID,
			CreatedAt:         now,
			UpdatedAt:         now,
			Tags:              src.Tags,
			Assignees:         src.Assignees,
		}
		if err := tx.Create(&todo).Error; err != nil {
			return fmt.Errorf("failed to create next occurrence of todo %d: %w", id, err)
		}
		if err := s.logActivity(tx, todo.ID, userID, models.ActionRecurringCreated, map[string]interface{}{
			"source_todo_id": id,
			"due_date":       next.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}

		var err error
		created, err = loadTodo(tx, todo.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
