// Package analytics turns todo collections into statistics, streaks, trends
// and daily rollups. The pure functions here never touch the database; the
// Reporter runs the few aggregations that are cheaper in SQL.
package analytics

import (
	"math"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
)

// Stats is the aggregate view over a set of todos.
type Stats struct {
	Total                 int            `json:"total"`
	Completed             int            `json:"completed"`
	Pending               int            `json:"pending"`
	InProgress            int            `json:"in_progress"`
	Cancelled             int            `json:"cancelled"`
	Overdue               int            `json:"overdue"`
	DueToday              int            `json:"due_today"`
	ByStatus              map[string]int `json:"by_status"`
	ByPriority            map[string]int `json:"by_priority"`
	ByCategory            map[string]int `json:"by_category"`
	CompletionRate        float64        `json:"completion_rate"`
	AverageCompletionTime *float64       `json:"average_completion_time"` // hours
	TotalTimeTracked      int            `json:"total_time_tracked"`      // minutes
	TotalPomodoros        int            `json:"total_pomodoros"`
	Streak                int            `json:"streak"`
}

// ComputeStats aggregates todos as of now. Calendar days are taken in
// now's location. Every category appears in ByCategory, even with a zero count.
func ComputeStats(todos []models.Todo, categories []models.Category, now time.Time) Stats {
	stats := Stats{
		Total:      len(todos),
		ByStatus:   make(map[string]int, len(models.Statuses)),
		ByPriority: make(map[string]int, len(models.Priorities)),
		ByCategory: make(map[string]int, len(categories)),
	}
	for _, s := range models.Statuses {
		stats.ByStatus[string(s)] = 0
	}
	for _, p := range models.Priorities {
		stats.ByPriority[string(p)] = 0
	}
	categoryNames := make(map[uint]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
		stats.ByCategory[c.Name] = 0
	}

	todayStart := StartOfDay(now)
	tomorrowStart := todayStart.AddDate(0, 0, 1)

	var (
		completionSeconds float64
		completedWithTime int
		completions       []time.Time
	)

	for i := range todos {
		t := &todos[i]

		if _, ok := stats.ByStatus[string(t.Status)]; ok {
			stats.ByStatus[string(t.Status)]++
		}
		if _, ok := stats.ByPriority[string(t.Priority)]; ok {
			stats.ByPriority[string(t.Priority)]++
		}
		if t.CategoryID != nil {
			if name, ok := categoryNames[*t.CategoryID]; ok {
				stats.ByCategory[name]++
			}
		}

		if t.DueDate != nil && t.Status != models.StatusCompleted {
			if t.DueDate.Before(now) {
				stats.Overdue++
			}
			due := t.DueDate.In(now.Location())
			if !due.Before(todayStart) && due.Before(tomorrowStart) {
				stats.DueToday++
			}
		}

		if t.CompletedAt != nil {
			completionSeconds += t.CompletedAt.Sub(t.CreatedAt).Seconds()
			completedWithTime++
			completions = append(completions, *t.CompletedAt)
		}
		if t.ActualDuration != nil {
			stats.TotalTimeTracked += *t.ActualDuration
		}
		stats.TotalPomodoros += t.PomodoroCount
	}

	stats.Completed = stats.ByStatus[string(models.StatusCompleted)]
	stats.Pending = stats.ByStatus[string(models.StatusPending)]
	stats.InProgress = stats.ByStatus[string(models.StatusInProgress)]
	stats.Cancelled = stats.ByStatus[string(models.StatusCancelled)]

	if stats.Total > 0 {
		stats.CompletionRate = round2(float64(stats.Completed) / float64(stats.Total) * 100)
	}
	if completedWithTime > 0 {
		hours := round2(completionSeconds / float64(completedWithTime) / 3600)
		stats.AverageCompletionTime = &hours
	}
	stats.Streak = Streak(completions, now)

	return stats
}

// Streak counts consecutive calendar days, walking back from today, with at
// least one completion. A day without completions yet does not break the
// streak while it is still today; the walk then starts from yesterday.
func Streak(completions []time.Time, now time.Time) int {
	days := make(map[string]bool, len(completions))
	for _, c := range completions {
		days[DayKey(c.In(now.Location()))] = true
	}

	day := StartOfDay(now)
	if !days[DayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[DayKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
