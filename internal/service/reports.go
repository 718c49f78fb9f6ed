package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kutbudev/todoflow/internal/analytics"
	"github.com/kutbudev/todoflow/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTrendDays     = 365
	dashboardListMax = 10
)

// Dashboard is the one-call summary used by the home screen.
type Dashboard struct {
	Stats          analytics.Stats      `json:"stats"`
	Trends         analytics.Trends     `json:"trends"`
	DueToday       []models.Todo        `json:"due_today"`
	Overdue        []models.Todo        `json:"overdue"`
	ActiveTimers   []models.Todo        `json:"active_timers"`
	RecentActivity []models.ActivityLog `json:"recent_activity"`
}

// scopedTodos loads every non-template todo visible to userID.
func (s *TodoService) scopedTodos(db *gorm.DB, userID *uint) ([]models.Todo, error) {
	todos := []models.Todo{}
	q := scopeToUser(db.Model(&models.Todo{}).Where("is_template = ?", false), userID)
	if err := q.Order("id ASC").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	return todos, nil
}

// Stats aggregates every todo visible to userID (all todos when nil).
func (s *TodoService) Stats(ctx context.Context, userID *uint) (*analytics.Stats, error) {
	db := s.db.WithContext(ctx)
	todos, err := s.scopedTodos(db, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	stats := analytics.ComputeStats(todos, categories, s.localNow())
	return &stats, nil
}

// Trends buckets creations and completions over the last days calendar days.
func (s *TodoService) Trends(ctx context.Context, days int, userID *uint) (*analytics.Trends, error) {
	if days < 1 || days > maxTrendDays {
		return nil, Invalid("days", "must be between 1 and %d", maxTrendDays)
	}
	todos, err := s.scopedTodos(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	trends := analytics.ComputeTrends(todos, days, s.localNow())
	return &trends, nil
}

// Dashboard combines stats, a week of trends and the todos that need attention.
func (s *TodoService) Dashboard(ctx context.Context, userID *uint) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	todos, err := s.scopedTodos(db, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	now := s.localNow()
	dash := &Dashboard{
		Stats:          analytics.ComputeStats(todos, categories, now),
		Trends:         analytics.ComputeTrends(todos, 7, now),
		DueToday:       []models.Todo{},
		Overdue:        []models.Todo{},
		ActiveTimers:   []models.Todo{},
		RecentActivity: []models.ActivityLog{},
	}

	today := analytics.DayKey(now)
	for _, t := range todos {
		if t.IsArchived {
			continue
		}
		if t.TimerStartedAt != nil {
			dash.ActiveTimers = append(dash.ActiveTimers, t)
		}
		if t.DueDate == nil || t.Status == models.StatusCompleted {
			continue
		}
		if t.IsOverdue(now) && len(dash.Overdue) < dashboardListMax {
			dash.Overdue = append(dash.Overdue, t)
		}
		if analytics.DayKey(t.DueDate.In(now.Location())) == today && len(dash.DueToday) < dashboardListMax {
			dash.DueToday = append(dash.DueToday, t)
		}
	}

	q := db.Model(&models.ActivityLog{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(dashboardListMax).Find(&dash.RecentActivity).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	return dash, nil
}

// TimeByCategory reports tracked minutes per category.
func (s *TodoService) TimeByCategory(ctx context.Context, userID *uint) ([]analytics.CategoryTime, error) {
	return s.reporter.TimeByCategory(ctx, userID)
}

// Heatmap counts completions per weekday and hour over the last days days.
func (s *TodoService) Heatmap(ctx context.Context, days int, userID *uint) ([]analytics.HeatmapCell, error) {
	if days < 1 || days > maxTrendDays {
		return nil, Invalid("days", "must be between 1 and %d", maxTrendDays)
	}
	since := analytics.StartOfDay(s.localNow()).AddDate(0, 0, -(days - 1))
	return s.reporter.CompletionHeatmap(ctx, since, userID)
}

// Export returns every todo matching f, ignoring pagination, with category
// and tags loaded for the export writers.
func (s *TodoService) Export(ctx context.Context, f ListFilter) ([]models.Todo, error) {
	f.Skip, f.Limit = 0, 0
	return s.ListTodos(ctx, f)
}

// Rollup computes and stores the analytics row for the calendar day holding
// day. Running it again for the same day and user overwrites the row.
func (s *TodoService) Rollup(ctx context.Context, day time.Time, userID *uint) (*models.Analytics, error) {
	db := s.db.WithContext(ctx)
	day = analytics.StartOfDay(day.In(s.loc))

	todos, err := s.scopedTodos(db, userID)
	if err != nil {
		return nil, err
	}

	var pomodoros []models.ActivityLog
	q := db.Where("action = ? AND created_at >= ? AND created_at < ?",
		models.ActionPomodoroCompleted, day.UTC(), day.AddDate(0, 0, 1).UTC())
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Find(&pomodoros).Error; err != nil {
		return nil, fmt.Errorf("failed to load pomodoro activity: %w", err)
	}

	row := analytics.DailyRollup(todos, pomodoros, day)
	if userID != nil {
		row.UserID = *userID
	}
	row.UpdatedAt = s.clock()

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tasks_completed", "tasks_created", "minutes_tracked",
			"pomodoros_completed", "productivity_score", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store rollup for %s: %w", row.Date, err)
	}

	var stored models.Analytics
	if err := db.Where("user_id = ? AND date = ?", row.UserID, row.Date).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to reload rollup for %s: %w", row.Date, err)
	}
	return &stored, nil
}

// ListAnalytics returns stored rollups for a user (0 for all users), newest first.
func (s *TodoService) ListAnalytics(ctx context.Context, userID uint, days int) ([]models.Analytics, error) {
	if days < 1 || days > maxTrendDays {
		return nil, Invalid("days", "must be between 1 and %d", maxTrendDays)
	}
	since := analytics.DayKey(analytics.StartOfDay(s.localNow()).AddDate(0, 0, -(days - 1)))

	rows := []models.Analytics{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}
	return rows, nil
}
