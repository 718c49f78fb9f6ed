package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// CategoryInput creates a category. Color defaults to models.DefaultColor.
type CategoryInput struct {
	Name  string
	Color string
	Icon  *string
}

// TagInput creates a tag.
type TagInput struct {
	Name  string
	Color string
}

// UserInput creates a user.
type UserInput struct {
	Username string
	Email    string
	FullName *string
	Theme    string
}

// nameTaken reports whether model already has a row where column = value.
func nameTaken(tx *gorm.DB, model interface{}, column, value string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func colorOrDefault(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return models.DefaultColor
	}
	return c
}

// ListCategories returns all categories ordered by name.
func (s *TodoService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category; names are unique.
func (s *TodoService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Invalid("name", "is required")
	}

	category := models.Category{Name: name, Color: colorOrDefault(in.Color), Icon: in.Icon}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Category{}, "name", name)
		if err != nil {
			return fmt.Errorf("failed to check category name: %w", err)
		}
		if taken {
			return fmt.Errorf("category %q already exists: %w", name, ErrConflict)
		}
		category.CreatedAt = s.clock()
		if err := tx.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListTags returns all tags ordered by name.
func (s *TodoService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag adds a tag; names are unique.
func (s *TodoService) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Invalid("name", "is required")
	}
	if len([]rune(name)) > 50 {
		return nil, Invalid("name", "must be at most 50 characters")
	}

	tag := models.Tag{Name: name, Color: colorOrDefault(in.Color)}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Tag{}, "name", name)
		if err != nil {
			return fmt.Errorf("failed to check tag name: %w", err)
		}
		if taken {
			return fmt.Errorf("tag %q already exists: %w", name, ErrConflict)
		}
		tag.CreatedAt = s.clock()
		if err := tx.Create(&tag).Error; err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateUser registers a user; username and email are unique.
func (s *TodoService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, Invalid("username", "is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, Invalid("email", "must be a valid email address")
	}

	user := models.User{
		Username:             username,
		Email:                email,
		FullName:             in.FullName,
		IsActive:             true,
		Theme:                in.Theme,
		NotificationsEnabled: true,
	}
	if user.Theme == "" {
		user.Theme = "light"
	}

	err := s.tx(ctx, func(tx *gorm.DB) error {
		for _, unique := range [][2]string{{"username", username}, {"email", email}} {
			column, value := unique[0], unique[1]
			taken, err := nameTaken(tx, &models.User{}, column, value)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", column, err)
			}
			if taken {
				return fmt.Errorf("%s %q already exists: %w", column, value, ErrConflict)
			}
		}
		now := s.clock()
		user.CreatedAt, user.UpdatedAt = now, now
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by username.
func (s *TodoService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser loads one user.
func (s *TodoService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return findUser(s.db.WithContext(ctx), id)
}

func findUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}
