package service

import (
	"context"
	"fmt"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// DispatchResult summarises a reminder run.
type DispatchResult struct {
	Todos         int `json:"todos"`
	Notifications int `json:"notifications"`
}

// ListNotifications returns a user's notifications, newest first.
func (s *TodoService) ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	db := s.db.WithContext(ctx)
	if _, err := findUser(db, userID); err != nil {
		return nil, err
	}

	q := db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	notifications := []models.Notification{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications of user %d: %w", userID, err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (s *TodoService) MarkNotificationRead(ctx context.Context, id uint) (*models.Notification, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark notification %d read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("notification", id)
	}

	var n models.Notification
	if err := db.First(&n, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get notification %d: %w", id, err)
	}
	return &n, nil
}

// DispatchReminders notifies the creator and assignees of every todo whose
// reminder is due and not yet sent, then marks the reminder sent. It runs
// once per call; scheduling is left to the caller.
func (s *TodoService) DispatchReminders(ctx context.Context) (DispatchResult, error) {
	var result DispatchResult
	now := s.clock()

	err := s.tx(ctx, func(tx *gorm.DB) error {
		var due []models.Todo
		err := tx.Preload("Assignees").
			Where("reminder_at IS NOT NULL AND reminder_sent = ?", false).
			Order("id ASC").
			Find(&due).Error
		if err != nil {
			return fmt.Errorf("failed to load due reminders: %w", err)
		}

		for i := range due {
			todo := &due[i]
			if todo.ReminderAt.After(now) {
				continue
			}

			for _, userID := range reminderRecipients(todo) {
				todoID := todo.ID
				n := models.Notification{
					UserID:    userID,
					TodoID:    &todoID,
					Kind:      models.NotificationReminder,
					Title:     "Reminder: " + todo.Title,
					Message:   reminderMessage(todo),
					CreatedAt: now,
				}
				if err := tx.Create(&n).Error; err != nil {
					return fmt.Errorf("failed to create reminder for todo %d: %w", todo.ID, err)
				}
				result.Notifications++
			}

			if err := tx.Model(todo).UpdateColumn("reminder_sent", true).Error; err != nil {
				return fmt.Errorf("failed to mark reminder sent on todo %d: %w", todo.ID, err)
			}
			result.Todos++
		}
		return nil
	})
	return result, err
}

func reminderRecipients(todo *models.Todo) []uint {
	seen := map[uint]bool{}
	var ids []uint
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if todo.CreatedByID != nil {
		add(*todo.CreatedByID)
	}
	for _, u := range todo.Assignees {
		add(u.ID)
	}
	return ids
}

func reminderMessage(todo *models.Todo) string {
	if todo.DueDate == nil {
		return fmt.Sprintf("%q is waiting for you.", todo.Title)
	}
	return fmt.Sprintf("%q is due %s.", todo.Title, todo.DueDate.UTC().Format("2006-01-02 15:04 MST"))
}
