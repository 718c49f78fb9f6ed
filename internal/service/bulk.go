package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// BulkChanges lists the columns a bulk update may set. Nil fields are left alone.
type BulkChanges struct {
	Status     *models.Status
	Priority   *models.Priority
	IsArchived *bool
	CategoryID Optional[*uint]
}

// BulkResult reports how many ids were requested and how many existed.
type BulkResult struct {
	Requested int `json:"requested"`
	Matched   int `json:"matched"`
}

func (c BulkChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	if c.Priority != nil {
		cols["priority"] = *c.Priority
	}
	if c.IsArchived != nil {
		cols["is_archived"] = *c.IsArchived
	}
	if c.CategoryID.Set {
		cols["category_id"] = c.CategoryID.Value
	}
	return cols
}

func (c BulkChanges) details() map[string]interface{} {
	details := map[string]interface{}{}
	for k, v := range c.columns() {
		details[k] = formatValue(v)
	}
	return details
}

func existingIDs(tx *gorm.DB, ids []uint) ([]uint, error) {
	var found []uint
	if err := tx.Model(&models.Todo{}).Where("id IN ?", ids).Order("id ASC").Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve todo ids: %w", err)
	}
	return found, nil
}

// BulkUpdate applies the same column changes to every listed todo. Unknown
// ids are skipped; each existing todo gets a "bulk_updated" entry.
func (s *TodoService) BulkUpdate(ctx context.Context, ids []uint, changes BulkChanges, userID *uint) (BulkResult, error) {
	result := BulkResult{Requested: len(ids)}
	if len(ids) == 0 {
		return result, Invalid("todo_ids", "at least one id is required")
	}
	cols := changes.columns()
	if len(cols) == 0 {
		return result, Invalid("updates", "no fields to update")
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		if changes.CategoryID.Set {
			if err := checkCategory(tx, changes.CategoryID.Value); err != nil {
				return err
			}
		}

		found, err := existingIDs(tx, ids)
		if err != nil {
			return err
		}
		result.Matched = len(found)
		if len(found) == 0 {
			return nil
		}

		now := s.clock()
		cols["updated_at"] = now
		if err := tx.Model(&models.Todo{}).Where("id IN ?", found).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to bulk update todos: %w", err)
		}
		if changes.Status != nil && *changes.Status == models.StatusCompleted {
			err := tx.Model(&models.Todo{}).
				Where("id IN ? AND completed_at IS NULL", found).
				Update("completed_at", now).Error
			if err != nil {
				return fmt.Errorf("failed to stamp completion: %w", err)
			}
		}

		details := changes.details()
		for _, id := range found {
			if err := s.logActivity(tx, id, userID, models.ActionBulkUpdated, details); err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

// BulkComplete marks todos completed.
func (s *TodoService) BulkComplete(ctx context.Context, ids []uint, userID *uint) (BulkResult, error) {
	status := models.StatusCompleted
	return s.BulkUpdate(ctx, ids, BulkChanges{Status: &status}, userID)
}

// BulkArchive archives todos.
func (s *TodoService) BulkArchive(ctx context.Context, ids []uint, userID *uint) (BulkResult, error) {
	archived := true
	return s.BulkUpdate(ctx, ids, BulkChanges{IsArchived: &archived}, userID)
}

// BulkMove moves todos into a category, or out of any category when categoryID is nil.
func (s *TodoService) BulkMove(ctx context.Context, ids []uint, categoryID *uint, userID *uint) (BulkResult, error) {
	return s.BulkUpdate(ctx, ids, BulkChanges{CategoryID: Some(categoryID)}, userID)
}

// BulkDelete deletes every listed todo that exists.
func (s *TodoService) BulkDelete(ctx context.Context, ids []uint, userID *uint) (BulkResult, error) {
	result := BulkResult{Requested: len(ids)}
	if len(ids) == 0 {
		return result, Invalid("todo_ids", "at least one id is required")
	}
	for _, id := range ids {
		if _, err := s.DeleteTodo(ctx, id, userID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return result, err
		}
		result.Matched++
	}
	return result, nil
}
