package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimerState describes the time tracked on a todo.
type TimerState struct {
	TodoID         uint               `json:"todo_id"`
	Running        bool               `json:"running"`
	StartedAt      *time.Time         `json:"started_at"`
	ElapsedSeconds int64              `json:"elapsed_seconds"` // current run
	TotalSeconds   int64              `json:"total_seconds"`   // recorded entries
	ActualDuration *int               `json:"actual_duration"` // minutes
	Entries        []models.TimeEntry `json:"entries"`
}

// StartTimer stamps timer_started_at and moves the todo to in_progress.
// Starting a running timer restarts it from now.
func (s *TodoService) StartTimer(ctx context.Context, id uint, userID *uint) (*models.Todo, error) {
	var started *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		todo, err := findTodo(tx, id)
		if err != nil {
			return err
		}

		now := s.clock()
		err = tx.Model(todo).Updates(map[string]interface{}{
			"timer_started_at": now,
			"status":           models.StatusInProgress,
			"updated_at":       now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to start timer on todo %d: %w", id, err)
		}
		if err := s.logActivity(tx, id, userID, models.ActionTimerStarted, map[string]interface{}{
			"started_at": now.Format(time.RFC3339),
		}); err != nil {
			return err
		}

		started, err = loadTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// StopTimer closes the running interval, appends it to time_entries and
// recomputes actual_duration as whole minutes of all entries.
func (s *TodoService) StopTimer(ctx context.Context, id uint, userID *uint) (*models.Todo, error) {
	var stopped *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		todo, err := findTodo(tx, id)
		if err != nil {
			return err
		}
		if todo.TimerStartedAt == nil {
			return fmt.Errorf("timer is not running on todo %d: %w", id, ErrInvalidState)
		}

		end := s.clock()
		start := todo.TimerStartedAt.UTC()
		seconds := int64(end.Sub(start) / time.Second)
		if seconds < 0 {
			seconds = 0
		}
		entry := models.TimeEntry{Start: start, End: end, Duration: seconds}

		entries := append(datatypes.JSONSlice[models.TimeEntry]{}, todo.TimeEntries...)
		entries = append(entries, entry)
		var total int64
		for _, e := range entries {
			total += e.Duration
		}
		minutes := int(total / 60)

		err = tx.Model(todo).Updates(map[string]interface{}{
			"time_entries":     entries,
			"actual_duration":  minutes,
			"timer_started_at": nil,
			"updated_at":       end,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to stop timer on todo %d: %w", id, err)
		}
		if err := s.logActivity(tx, id, userID, models.ActionTimerStopped, map[string]interface{}{
			"duration":        seconds,
			"actual_duration": minutes,
		}); err != nil {
			return err
		}

		stopped, err = loadTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stopped, nil
}

// TimerStatus reports the running interval and recorded totals.
func (s *TodoService) TimerStatus(ctx context.Context, id uint) (*TimerState, error) {
	todo, err := findTodo(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	state := &TimerState{
		TodoID:         todo.ID,
		Running:        todo.TimerStartedAt != nil,
		StartedAt:      todo.TimerStartedAt,
		TotalSeconds:   todo.TrackedSeconds(),
		ActualDuration: todo.ActualDuration,
		Entries:        []models.TimeEntry(todo.TimeEntries),
	}
	if state.Entries == nil {
		state.Entries = []models.TimeEntry{}
	}
	if todo.TimerStartedAt != nil {
		if elapsed := s.clock().Sub(*todo.TimerStartedAt); elapsed > 0 {
			state.ElapsedSeconds = int64(elapsed / time.Second)
		}
	}
	return state, nil
}

// CompletePomodoro increments pomodoro_count.
func (s *TodoService) CompletePomodoro(ctx context.Context, id uint, userID *uint) (*models.Todo, error) {
	var updated *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Todo{}).
			Where("id = ?", id).
			UpdateColumn("pomodoro_count", gorm.Expr("pomodoro_count + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("failed to record pomodoro on todo %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("todo", id)
		}

		todo, err := loadTodo(tx, id)
		if err != nil {
			return err
		}
		if err := s.logActivity(tx, id, userID, models.ActionPomodoroCompleted, map[string]interface{}{
			"pomodoro_count": todo.PomodoroCount,
		}); err != nil {
			return err
		}
		updated = todo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
