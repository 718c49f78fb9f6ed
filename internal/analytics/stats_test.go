package analytics

import (
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestStreak(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2024, 5, 10+offset, 9, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"empty", nil, 0},
		{"today only", []time.Time{day(0)}, 1},
		{"gap breaks the run", []time.Time{day(0), day(-1), day(-2), day(-4)}, 3},
		{"today pending keeps yesterday's run", []time.Time{day(-1), day(-2)}, 2},
		{"two days ago is not a streak", []time.Time{day(-2), day(-3)}, 0},
		{"several completions on one day count once", []time.Time{day(0), day(0), day(-1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.completions, now))
		})
	}
}

func TestStreakUsesLocationCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 5, 10, 1, 0, 0, 0, loc)
	// 22:30 UTC on May 9 is already May 10 at UTC+3.
	completion := time.Date(2024, 5, 9, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, Streak([]time.Time{completion}, now))
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)
	categories := []models.Category{{ID: 1, Name: "Work"}, {ID: 2, Name: "Home"}}

	todos := []models.Todo{
		{ID: 1, Status: models.StatusCompleted, Priority: models.PriorityHigh, CategoryID: uintPtr(1),
			CreatedAt: created, CompletedAt: timePtr(created.Add(2 * time.Hour)), ActualDuration: intPtr(30), PomodoroCount: 2},
		{ID: 2, Status: models.StatusCompleted, Priority: models.PriorityLow,
			CreatedAt: created, CompletedAt: timePtr(created.Add(4 * time.Hour)), ActualDuration: intPtr(15)},
		{ID: 3, Status: models.StatusPending, Priority: models.PriorityUrgent, CategoryID: uintPtr(1),
			CreatedAt: created, DueDate: timePtr(now.Add(-time.Hour))},
		{ID: 4, Status: models.StatusInProgress, Priority: models.PriorityMedium,
			CreatedAt: created, DueDate: timePtr(now.Add(3 * time.Hour))},
		{ID: 5, Status: models.StatusCompleted, Priority: models.PriorityMedium,
			CreatedAt: created, DueDate: timePtr(now.Add(-time.Hour))},
	}

	stats := ComputeStats(todos, categories, now)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 0, stats.Cancelled)
	assert.Equal(t, 1, stats.Overdue, "completed todos are never overdue")
	assert.Equal(t, 2, stats.DueToday, "todo 3 and todo 4 are due today, todo 5 is completed")
	assert.Equal(t, map[string]int{"Work": 2, "Home": 0}, stats.ByCategory)
	assert.Equal(t, 1, stats.ByPriority["urgent"])
	assert.Equal(t, 0, stats.ByStatus["cancelled"])
	assert.Equal(t, 60.0, stats.CompletionRate)
	require.NotNil(t, stats.AverageCompletionTime)
	assert.Equal(t, 3.0, *stats.AverageCompletionTime)
	assert.Equal(t, 45, stats.TotalTimeTracked)
	assert.Equal(t, 2, stats.TotalPomodoros)
	assert.Equal(t, 0, stats.Streak, "last completion was two days ago")
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil, time.Now())

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)
	assert.Nil(t, stats.AverageCompletionTime)
	assert.Len(t, stats.ByStatus, len(models.Statuses))
	assert.Empty(t, stats.ByCategory)
}
