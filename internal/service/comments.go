package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

const defaultActivityLimit = 50

// AddComment attaches a comment to a todo and logs "commented".
func (s *TodoService) AddComment(ctx context.Context, todoID uint, userID *uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Invalid("content", "is required")
	}

	var comment models.Comment
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if _, err := findTodo(tx, todoID); err != nil {
			return err
		}
		if userID != nil {
			if _, err := findUser(tx, *userID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return Invalid("user_id", "user %d does not exist", *userID)
				}
				return err
			}
		}

		now := s.clock()
		comment = models.Comment{TodoID: todoID, UserID: userID, Content: content, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to add comment to todo %d: %w", todoID, err)
		}
		if err := s.logActivity(tx, todoID, userID, models.ActionCommented, map[string]interface{}{
			"comment_id": comment.ID,
		}); err != nil {
			return err
		}
		return tx.Preload("User").First(&comment, comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a todo's comments, oldest first.
func (s *TodoService) ListComments(ctx context.Context, todoID uint) ([]models.Comment, error) {
	db := s.db.WithContext(ctx)
	if _, err := findTodo(db, todoID); err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	err := db.Preload("User").
		Where("todo_id = ?", todoID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of todo %d: %w", todoID, err)
	}
	return comments, nil
}

// DeleteComment removes a single comment.
func (s *TodoService) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("comment", id)
	}
	return nil
}

// ListActivity returns the newest entries for a todo. Entries outlive the
// todo, so a deleted todo still has a history.
func (s *TodoService) ListActivity(ctx context.Context, todoID uint, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	logs := []models.ActivityLog{}
	err := s.db.WithContext(ctx).
		Where("todo_id = ?", todoID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity of todo %d: %w", todoID, err)
	}
	return logs, nil
}
