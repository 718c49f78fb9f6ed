package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// InstantiateInput overrides template fields on the new todo.
type InstantiateInput struct {
	Title       *string
	DueDate     *time.Time
	CreatedByID *uint
}

// MakeTemplate flags a todo as a reusable template under name. An empty
// name falls back to the todo title.
func (s *TodoService) MakeTemplate(ctx context.Context, id uint, name string, userID *uint) (*models.Todo, error) {
	var template *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		todo, err := findTodo(tx, id)
		if err != nil {
			return err
		}

		name = strings.TrimSpace(name)
		if name == "" {
			name = todo.Title
		}
		err = tx.Model(todo).Updates(map[string]interface{}{
			"is_template":   true,
			"template_name": name,
			"updated_at":    s.clock(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to make todo %d a template: %w", id, err)
		}
		if err := s.logActivity(tx, id, userID, models.ActionTemplateCreated, map[string]interface{}{
			"template_name": name,
		}); err != nil {
			return err
		}

		template, err = loadTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

// ListTemplates returns all templates ordered by name.
func (s *TodoService) ListTemplates(ctx context.Context) ([]models.Todo, error) {
	templates := []models.Todo{}
	err := s.db.WithContext(ctx).
		Preload("Category").Preload("Tags").
		Where("is_template = ?", true).
		Order("template_name ASC").Order("id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// CreateFromTemplate creates a pending, non-template todo that copies the
// template's descriptive fields and tags.
func (s *TodoService) CreateFromTemplate(ctx context.Context, templateID uint, in InstantiateInput) (*models.Todo, error) {
	var created *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var tpl models.Todo
		err := tx.Preload("Tags").Where("is_template = ?", true).First(&tpl, templateID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("template", templateID)
			}
			return fmt.Errorf("failed to get template %d: %w", templateID, err)
		}

		title := tpl.Title
		if in.Title != nil {
			if title, err = validateTitle(*in.Title); err != nil {
				return err
			}
		}

		now := s.clock()
		todo := models.Todo{
			Title:             title,
			Description:       tpl.Description,
			Status:            models.StatusPending,
			Priority:          tpl.Priority,
			DueDate:           in.DueDate,
			CategoryID:        tpl.CategoryID,
			EstimatedDuration: tpl.EstimatedDuration,
			Notes:             tpl.Notes,
			RecurrencePattern: models.RecurrenceNone,
			PomodoroTarget:    tpl.PomodoroTarget,
			CreatedByID:       in.CreatedByID,
			CreatedAt:         now,
			UpdatedAt:         now,
			Tags:              tpl.Tags,
		}
		if err := tx.Create(&todo).Error; err != nil {
			return fmt.Errorf("failed to create todo from template %d: %w", templateID, err)
		}
		if err := s.logActivity(tx, todo.ID, in.CreatedByID, models.ActionCreated, map[string]interface{}{
			"title":       todo.Title,
			"template_id": templateID,
		}); err != nil {
			return err
		}

		created, err = loadTodo(tx, todo.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
