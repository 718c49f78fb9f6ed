package analytics

import (
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
)

// Trends holds daily buckets ordered oldest to newest. The slices are parallel.
type Trends struct {
	Labels    []string `json:"labels"`
	Dates     []string `json:"dates"`
	Completed []int    `json:"completed"`
	Created   []int    `json:"created"`
	TimeSpent []int    `json:"time_spent"` // minutes
}

// ComputeTrends buckets the last days calendar days ending today.
// TimeSpent sums actual_duration of the todos completed on each day.
func ComputeTrends(todos []models.Todo, days int, now time.Time) Trends {
	if days < 1 {
		days = 1
	}
	tr := Trends{
		Labels:    make([]string, days),
		Dates:     make([]string, days),
		Completed: make([]int, days),
		Created:   make([]int, days),
		TimeSpent: make([]int, days),
	}

	start := StartOfDay(now).AddDate(0, 0, -(days - 1))
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		tr.Labels[i] = day.Format("Jan 02")
		tr.Dates[i] = DayKey(day)
		index[tr.Dates[i]] = i
	}

	loc := now.Location()
	for i := range todos {
		t := &todos[i]
		if i, ok := index[DayKey(t.CreatedAt.In(loc))]; ok {
			tr.Created[i]++
		}
		if t.CompletedAt == nil {
			continue
		}
		if i, ok := index[DayKey(t.CompletedAt.In(loc))]; ok {
			tr.Completed[i]++
			if t.ActualDuration != nil {
				tr.TimeSpent[i] += *t.ActualDuration
			}
		}
	}
	return tr
}

// DailyRollup computes the analytics row for the calendar day containing day.
// pomodoros are the pomodoro_completed activity entries for the same scope.
func DailyRollup(todos []models.Todo, pomodoros []models.ActivityLog, day time.Time) models.Analytics {
	key := DayKey(day)
	loc := day.Location()
	row := models.Analytics{Date: key}

	for i := range todos {
		t := &todos[i]
		if DayKey(t.CreatedAt.In(loc)) == key {
			row.TasksCreated++
		}
		if t.CompletedAt != nil && DayKey(t.CompletedAt.In(loc)) == key {
			row.TasksCompleted++
			if t.ActualDuration != nil {
				row.MinutesTracked += *t.ActualDuration
			}
		}
	}
	for _, p := range pomodoros {
		if p.Action == models.ActionPomodoroCompleted && DayKey(p.CreatedAt.In(loc)) == key {
			row.PomodorosCompleted++
		}
	}

	row.ProductivityScore = ProductivityScore(row)
	return row
}

// ProductivityScore weighs a day's output: one point per completed todo,
// half a point per pomodoro and one point per tracked hour.
func ProductivityScore(a models.Analytics) float64 {
	return round2(float64(a.TasksCompleted) + 0.5*float64(a.PomodorosCompleted) + float64(a.MinutesTracked)/60)
}
