package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
)

// SortField names a sortable todo column.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortTitle     SortField = "title"
)

// ParseSortField accepts the column names above; empty input means created_at.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortCreatedAt, nil
	case SortCreatedAt, SortDueDate, SortPriority, SortTitle:
		return f, nil
	default:
		return "", Invalid("sort_by", "unknown sort field %q", s)
	}
}

// priorityRank mirrors models.Priority.Rank in SQL.
const priorityRank = "CASE priority WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 WHEN 'low' THEN 4 ELSE 5 END"

// maxSubtaskDepth bounds the recursive subtask load.
const maxSubtaskDepth = 32

// ListFilter selects and orders top-level todos.
type ListFilter struct {
	Skip  int
	Limit int // 0 means no limit

	Search    string
	Completed *bool // ignored when Status is set
	Status    *models.Status
	Priority  *models.Priority
	Category  string // category name

	IncludeArchived  bool
	IncludeTemplates bool

	SortBy    SortField
	SortOrder string // "asc" or "desc" (default)

	UserID *uint
}

func applyListFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	q = q.Where("parent_id IS NULL")

	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(notes) LIKE ?)", like, like, like)
	}

	switch {
	case f.Status != nil:
		q = q.Where("status = ?", *f.Status)
	case f.Completed != nil && *f.Completed:
		q = q.Where("status = ?", models.StatusCompleted)
	case f.Completed != nil:
		q = q.Where("status = ?", models.StatusPending)
	}

	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}

	if f.Category != "" {
		categories := q.Session(&gorm.Session{NewDB: true}).
			Model(&models.Category{}).
			Select("id").
			Where("name = ?", f.Category)
		q = q.Where("category_id IN (?)", categories)
	}

	if !f.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if !f.IncludeTemplates {
		q = q.Where("is_template = ?", false)
	}

	return scopeToUser(q, f.UserID)
}

func applyListOrder(q *gorm.DB, f ListFilter) *gorm.DB {
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	column := "created_at"
	switch f.SortBy {
	case SortDueDate:
		column = "due_date"
	case SortPriority:
		column = priorityRank
	case SortTitle:
		column = "title"
	}

	return q.Order(column + " " + dir).Order("id " + dir)
}

// ListTodos returns top-level todos matching f with their category and tags.
func (s *TodoService) ListTodos(ctx context.Context, f ListFilter) ([]models.Todo, error) {
	if f.Skip < 0 {
		return nil, Invalid("skip", "must not be negative")
	}
	if f.Limit < 0 {
		return nil, Invalid("limit", "must not be negative")
	}

	q := applyListFilter(s.db.WithContext(ctx).Model(&models.Todo{}), f)
	q = applyListOrder(q, f)
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	todos := []models.Todo{}
	if err := q.Preload("Category").Preload("Tags").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetTodo loads a todo with its whole neighbourhood: category, tags,
// assignees, creator, comments, dependencies, dependents and the subtask tree.
func (s *TodoService) GetTodo(ctx context.Context, id uint) (*models.Todo, error) {
	return loadTodo(s.db.WithContext(ctx), id)
}

func loadTodo(tx *gorm.DB, id uint) (*models.Todo, error) {
	var todo models.Todo
	err := tx.
		Preload("Category").
		Preload("Tags").
		Preload("Assignees").
		Preload("CreatedBy").
		Preload("Dependencies").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Comments.User").
		First(&todo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("todo", id)
		}
		return nil, fmt.Errorf("failed to get todo %d: %w", id, err)
	}

	visited := map[uint]bool{todo.ID: true}
	if err := loadSubtasks(tx, []*models.Todo{&todo}, visited, 0); err != nil {
		return nil, err
	}

	dependents, err := dependentsOf(tx, todo.ID)
	if err != nil {
		return nil, err
	}
	todo.DependentTasks = dependents

	return &todo, nil
}

// loadSubtasks fills Subtasks level by level. A todo already in visited is
// never attached twice, which keeps a corrupted parent chain from looping.
func loadSubtasks(tx *gorm.DB, parents []*models.Todo, visited map[uint]bool, depth int) error {
	if len(parents) == 0 || depth >= maxSubtaskDepth {
		return nil
	}

	ids := make([]uint, 0, len(parents))
	byID := make(map[uint]*models.Todo, len(parents))
	for _, p := range parents {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	var children []*models.Todo
	err := tx.Preload("Category").Preload("Tags").
		Where("parent_id IN ?", ids).
		Order("position ASC").Order("id ASC").
		Find(&children).Error
	if err != nil {
		return fmt.Errorf("failed to load subtasks: %w", err)
	}

	next := make([]*models.Todo, 0, len(children))
	for _, child := range children {
		if visited[child.ID] || child.ParentID == nil {
			continue
		}
		visited[child.ID] = true
		parent := byID[*child.ParentID]
		parent.Subtasks = append(parent.Subtasks, child)
		next = append(next, child)
	}

	return loadSubtasks(tx, next, visited, depth+1)
}

func dependentsOf(tx *gorm.DB, id uint) ([]*models.Todo, error) {
	var ids []uint
	err := tx.Table(models.DependencyJoinTable).
		Where("depends_on_id = ?", id).
		Pluck("todo_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load dependents of todo %d: %w", id, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var dependents []*models.Todo
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&dependents).Error; err != nil {
		return nil, fmt.Errorf("failed to load dependents of todo %d: %w", id, err)
	}
	return dependents, nil
}
