package models

import (
	"time"

	"gorm.io/datatypes"
)

// TimeEntry is one stopped timer interval recorded on a todo.
type TimeEntry struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int64     `json:"duration"` // seconds
}

// Attachment is a link to an external file attached to a todo.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
	Type string `json:"type,omitempty"`
}

// Todo represents a task in the system
type Todo struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null;index"`
	Description *string    `json:"description"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	Priority    Priority   `json:"priority" gorm:"type:varchar(20);not null;default:medium;index"`
	DueDate     *time.Time `json:"due_date" gorm:"index"`
	CategoryID  *uint      `json:"category_id" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	IsArchived  bool       `json:"is_archived" gorm:"not null;default:false;index"`

	EstimatedDuration *int    `json:"estimated_duration"` // minutes
	ActualDuration    *int    `json:"actual_duration"`    // minutes
	Notes             *string `json:"notes"`
	ParentID          *uint   `json:"parent_id" gorm:"index"`
	Position          int     `json:"position" gorm:"not null;default:0"`

	RecurrencePattern RecurrencePattern `json:"recurrence_pattern" gorm:"type:varchar(20);not null;default:none"`
	RecurrenceEndDate *time.Time        `json:"recurrence_end_date"`
	OriginalTodoID    *uint             `json:"original_todo_id" gorm:"index"`

	IsTemplate   bool    `json:"is_template" gorm:"not null;default:false;index"`
	TemplateName *string `json:"template_name"`

	TimeEntries    datatypes.JSONSlice[TimeEntry]  `json:"time_entries"`
	TimerStartedAt *time.Time                      `json:"timer_started_at"`
	Attachments    datatypes.JSONSlice[Attachment] `json:"attachments"`

	ReminderAt   *time.Time `json:"reminder_at"`
	ReminderSent bool       `json:"reminder_sent" gorm:"not null;default:false"`

	PomodoroCount  int  `json:"pomodoro_count" gorm:"not null;default:0"`
	PomodoroTarget *int `json:"pomodoro_target"`

	CreatedByID *uint `json:"created_by_id" gorm:"index"`

	// Foreign Key Relations
	Category  *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedBy *User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`

	// One-to-Many Relations
	Comments []*Comment `json:"comments,omitempty" gorm:"foreignKey:TodoID"`
	Subtasks []*Todo    `json:"subtasks,omitempty" gorm:"foreignKey:ParentID"`

	// Many-to-Many Relations
	Tags         []*Tag  `json:"tags,omitempty" gorm:"many2many:todo_tags"`
	Assignees    []*User `json:"assignees,omitempty" gorm:"many2many:todo_assignees"`
	Dependencies []*Todo `json:"dependencies,omitempty" gorm:"many2many:todo_dependencies;joinForeignKey:TodoID;joinReferences:DependsOnID"`

	// DependentTasks is the reverse side of Dependencies, filled on detail reads.
	DependentTasks []*Todo `json:"dependent_tasks,omitempty" gorm:"-"`
}

// TableName specifies the table name for GORM
func (Todo) TableName() string {
	return "todos"
}

// DependencyJoinTable is the join table behind Todo.Dependencies.
const DependencyJoinTable = "todo_dependencies"

// TagNames returns the names of the loaded tags in their stored order.
func (t *Todo) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if tag != nil {
			names = append(names, tag.Name)
		}
	}
	return names
}

// IsOverdue reports whether the todo is past due and not completed.
func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// TrackedSeconds sums the durations of all recorded time entries.
func (t *Todo) TrackedSeconds() int64 {
	var total int64
	for _, e := range t.TimeEntries {
		total += e.Duration
	}
	return total
}
