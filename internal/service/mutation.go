package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTitleLength = 200

// CreateTodoInput is the validated input for CreateTodo. Zero Status and
// Priority fall back to pending and medium.
type CreateTodoInput struct {
	Title             string
	Description       *string
	Status            models.Status
	Priority          models.Priority
	DueDate           *time.Time
	CategoryID        *uint
	EstimatedDuration *int
	Notes             *string
	ParentID          *uint
	Position          int
	RecurrencePattern models.RecurrencePattern
	RecurrenceEndDate *time.Time
	ReminderAt        *time.Time
	PomodoroTarget    *int
	Attachments       []models.Attachment
	CreatedByID       *uint

	// Unknown ids in these lists are dropped.
	TagIDs        []uint
	AssigneeIDs   []uint
	DependencyIDs []uint
}

// TodoPatch is a partial update; only fields with Set are applied.
type TodoPatch struct {
	Title             Optional[string]
	Description       Optional[*string]
	Status            Optional[models.Status]
	Priority          Optional[models.Priority]
	DueDate           Optional[*time.Time]
	CategoryID        Optional[*uint]
	IsArchived        Optional[bool]
	EstimatedDuration Optional[*int]
	ActualDuration    Optional[*int]
	Notes             Optional[*string]
	ParentID          Optional[*uint]
	Position          Optional[int]
	RecurrencePattern Optional[models.RecurrencePattern]
	RecurrenceEndDate Optional[*time.Time]
	ReminderAt        Optional[*time.Time]
	PomodoroTarget    Optional[*int]
	Attachments       Optional[[]models.Attachment]
	// CompletedAt, when set, overrides the automatic stamp (null clears it).
	CompletedAt Optional[*time.Time]

	TagIDs        Optional[[]uint]
	AssigneeIDs   Optional[[]uint]
	DependencyIDs Optional[[]uint]

	// UserID is the actor recorded in the activity log.
	UserID *uint
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", Invalid("title", "is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", Invalid("title", "must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func validateNonNegative(field string, v *int) error {
	if v != nil && *v < 0 {
		return Invalid(field, "must not be negative")
	}
	return nil
}

func checkCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return Invalid("category_id", "category %d does not exist", *id)
	}
	return nil
}

func checkParent(tx *gorm.DB, id *uint, self uint) error {
	if id == nil {
		return nil
	}
	if *id == self {
		return Invalid("parent_id", "a todo cannot be its own parent")
	}
	var count int64
	if err := tx.Model(&models.Todo{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check parent: %w", err)
	}
	if count == 0 {
		return Invalid("parent_id", "todo %d does not exist", *id)
	}
	return nil
}

func findTags(tx *gorm.DB, ids []uint) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

func findUsers(tx *gorm.DB, ids []uint) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// findDependencies resolves dependency ids, ignoring self.
func findDependencies(tx *gorm.DB, ids []uint, self uint) ([]*models.Todo, error) {
	deps := []*models.Todo{}
	filtered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != self {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return deps, nil
	}
	if err := tx.Where("id IN ?", filtered).Order("id ASC").Find(&deps).Error; err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}
	return deps, nil
}

// CreateTodo inserts a todo with its relationships and logs "created".
func (s *TodoService) CreateTodo(ctx context.Context, in CreateTodoInput) (*models.Todo, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateNonNegative("estimated_duration", in.EstimatedDuration); err != nil {
		return nil, err
	}
	if err := validateNonNegative("pomodoro_target", in.PomodoroTarget); err != nil {
		return nil, err
	}

	todo := models.Todo{
		Title:             title,
		Description:       in.Description,
		Status:            in.Status,
		Priority:          in.Priority,
		DueDate:           in.DueDate,
		CategoryID:        in.CategoryID,
		EstimatedDuration: in.EstimatedDuration,
		Notes:             in.Notes,
		ParentID:          in.ParentID,
		Position:          in.Position,
		RecurrencePattern: in.RecurrencePattern,
		RecurrenceEndDate: in.RecurrenceEndDate,
		ReminderAt:        in.ReminderAt,
		PomodoroTarget:    in.PomodoroTarget,
		Attachments:       in.Attachments,
		CreatedByID:       in.CreatedByID,
	}
	if todo.Status == "" {
		todo.Status = models.StatusPending
	}
	if todo.Priority == "" {
		todo.Priority = models.PriorityMedium
	}
	if todo.RecurrencePattern == "" {
		todo.RecurrencePattern = models.RecurrenceNone
	}

	var created *models.Todo
	err = s.tx(ctx, func(tx *gorm.DB) error {
		var err error
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		if err := checkParent(tx, in.ParentID, 0); err != nil {
			return err
		}

		now := s.clock()
		todo.CreatedAt = now
		todo.UpdatedAt = now
		if todo.Status == models.StatusCompleted {
			todo.CompletedAt = &now
		}

		if todo.Tags, err = findTags(tx, in.TagIDs); err != nil {
			return err
		}
		if todo.Assignees, err = findUsers(tx, in.AssigneeIDs); err != nil {
			return err
		}
		if todo.Dependencies, err = findDependencies(tx, in.DependencyIDs, 0); err != nil {
			return err
		}

		if err := tx.Create(&todo).Error; err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}
		if err := s.logActivity(tx, todo.ID, in.CreatedByID, models.ActionCreated, map[string]interface{}{
			"title": todo.Title,
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

// UpdateTodo applies patch and logs "updated" with a before/after pair for
// every field whose value changed. Setting status to completed stamps
// completed_at only if it is unset; leaving completed never clears it.
func (s *TodoService) UpdateTodo(ctx context.Context, id uint, patch TodoPatch) (*models.Todo, error) {
	if patch.Title.Set {
		title, err := validateTitle(patch.Title.Value)
		if err != nil {
			return nil, err
		}
		patch.Title.Value = title
	}
	if patch.EstimatedDuration.Set {
		if err := validateNonNegative("estimated_duration", patch.EstimatedDuration.Value); err != nil {
			return nil, err
		}
	}
	if patch.ActualDuration.Set {
		if err := validateNonNegative("actual_duration", patch.ActualDuration.Value); err != nil {
			return nil, err
		}
	}
	if patch.PomodoroTarget.Set {
		if err := validateNonNegative("pomodoro_target", patch.PomodoroTarget.Value); err != nil {
			return nil, err
		}
	}

	var updated *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		todo, err := loadTodo(tx, id)
		if err != nil {
			return err
		}
		if patch.CategoryID.Set {
			if err := checkCategory(tx, patch.CategoryID.Value); err != nil {
				return err
			}
		}
		if patch.ParentID.Set {
			if err := checkParent(tx, patch.ParentID.Value, id); err != nil {
				return err
			}
		}

		// only a patch that sets status to completed stamps completed_at
		completing := patch.Status.Set && patch.Status.Value == models.StatusCompleted

		changes := map[string]interface{}{}
		applyField(changes, "title", patch.Title, &todo.Title)
		applyField(changes, "description", patch.Description, &todo.Description)
		applyField(changes, "status", patch.Status, &todo.Status)
		applyField(changes, "priority", patch.Priority, &todo.Priority)
		applyField(changes, "due_date", patch.DueDate, &todo.DueDate)
		applyField(changes, "category_id", patch.CategoryID, &todo.CategoryID)
		applyField(changes, "is_archived", patch.IsArchived, &todo.IsArchived)
		applyField(changes, "estimated_duration", patch.EstimatedDuration, &todo.EstimatedDuration)
		applyField(changes, "actual_duration", patch.ActualDuration, &todo.ActualDuration)
		applyField(changes, "notes", patch.Notes, &todo.Notes)
		applyField(changes, "parent_id", patch.ParentID, &todo.ParentID)
		applyField(changes, "position", patch.Position, &todo.Position)
		applyField(changes, "recurrence_pattern", patch.RecurrencePattern, &todo.RecurrencePattern)
		applyField(changes, "recurrence_end_date", patch.RecurrenceEndDate, &todo.RecurrenceEndDate)
		applyField(changes, "reminder_at", patch.ReminderAt, &todo.ReminderAt)
		applyField(changes, "pomodoro_target", patch.PomodoroTarget, &todo.PomodoroTarget)
		applyField(changes, "attachments", patch.Attachments, (*[]models.Attachment)(&todo.Attachments))
		if _, ok := changes["reminder_at"]; ok {
			todo.ReminderSent = false
		}

		if patch.CompletedAt.Set {
			applyField(changes, "completed_at", patch.CompletedAt, &todo.CompletedAt)
		} else if completing && todo.CompletedAt == nil {
			now := s.clock()
			applyField(changes, "completed_at", Some(&now), &todo.CompletedAt)
		}

		if err := s.replaceRelations(tx, todo, patch, changes); err != nil {
			return err
		}

		if len(changes) > 0 {
			todo.UpdatedAt = s.clock()
			if err := tx.Omit(clause.Associations).Save(todo).Error; err != nil {
				return fmt.Errorf("failed to update todo %d: %w", id, err)
			}
		}
		if len(changes) > 0 {
			if err := s.logActivity(tx, id, patch.UserID, models.ActionUpdated, changes); err != nil {
				return err
			}
		}

		updated, err = loadTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TodoService) replaceRelations(tx *gorm.DB, todo *models.Todo, patch TodoPatch, changes map[string]interface{}) error {
	if patch.TagIDs.Set {
		tags, err := findTags(tx, patch.TagIDs.Value)
		if err != nil {
			return err
		}
		recordIDs(changes, "tag_ids", tagIDs(todo.Tags), tagIDs(tags))
		if err := replaceAssociation(tx, todo, "Tags", tags, len(tags)); err != nil {
			return err
		}
		todo.Tags = tags
	}
	if patch.AssigneeIDs.Set {
		users, err := findUsers(tx, patch.AssigneeIDs.Value)
		if err != nil {
			return err
		}
		recordIDs(changes, "assignee_ids", userIDs(todo.Assignees), userIDs(users))
		if err := replaceAssociation(tx, todo, "Assignees", users, len(users)); err != nil {
			return err
		}
		todo.Assignees = users
	}
	if patch.DependencyIDs.Set {
		deps, err := findDependencies(tx, patch.DependencyIDs.Value, todo.ID)
		if err != nil {
			return err
		}
		recordIDs(changes, "dependency_ids", todoIDs(todo.Dependencies), todoIDs(deps))
		if err := replaceAssociation(tx, todo, "Dependencies", deps, len(deps)); err != nil {
			return err
		}
		todo.Dependencies = deps
	}
	return nil
}

func replaceAssociation(tx *gorm.DB, todo *models.Todo, name string, values interface{}, n int) error {
	assoc := tx.Model(todo).Association(name)
	var err error
	if n == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("failed to replace %s of todo %d: %w", strings.ToLower(name), todo.ID, err)
	}
	return nil
}

// DeleteTodo removes a todo with its comments and relationship rows and
// returns it as it was. Subtasks keep their parent_id; dependents lose the
// dependency.
func (s *TodoService) DeleteTodo(ctx context.Context, id uint, userID *uint) (*models.Todo, error) {
	var deleted *models.Todo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		todo, err := loadTodo(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("todo_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of todo %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM todo_tags WHERE todo_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink tags of todo %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM todo_assignees WHERE todo_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink assignees of todo %d: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM todo_dependencies WHERE todo_id = ? OR depends_on_id = ?", id, id).Error; err != nil {
			return fmt.Errorf("failed to unlink dependencies of todo %d: %w", id, err)
		}
		if err := tx.Delete(&models.Todo{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete todo %d: %w", id, err)
		}
		if err := s.logActivity(tx, id, userID, models.ActionDeleted, map[string]interface{}{
			"title": todo.Title,
		}); err != nil {
			return err
		}

		deleted = todo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// applyField assigns opt to dst when set and records the change if the
// rendered value differs.
func applyField[T any](changes map[string]interface{}, name string, opt Optional[T], dst *T) {
	if !opt.Set {
		return
	}
	before, after := formatValue(*dst), formatValue(opt.Value)
	*dst = opt.Value
	if before != after {
		changes[name] = models.FieldChange{Old: before, New: after}
	}
}

func recordIDs(changes map[string]interface{}, name string, before, after []uint) {
	b, a := formatIDs(before), formatIDs(after)
	if b != a {
		changes[name] = models.FieldChange{Old: b, New: a}
	}
}

func formatIDs(ids []uint) string {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// formatValue renders a field value for the activity log. nil pointers are "".
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case *uint:
		if x == nil {
			return ""
		}
		return strconv.FormatUint(uint64(*x), 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case []models.Attachment:
		if len(x) == 0 {
			return "[]"
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func tagIDs(tags []*models.Tag) []uint {
	ids := make([]uint, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func userIDs(users []*models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func todoIDs(todos []*models.Todo) []uint {
	ids := make([]uint, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	return ids
}
