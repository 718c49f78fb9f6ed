package analytics

import (
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeTrends(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	todos := []models.Todo{
		{CreatedAt: time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
			CompletedAt: timePtr(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)), ActualDuration: intPtr(25)},
		{CreatedAt: time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC)},
	}

	tr := ComputeTrends(todos, 3, now)

	assert.Equal(t, []string{"Feb 29", "Mar 01", "Mar 02"}, tr.Labels)
	assert.Equal(t, []string{"2024-02-29", "2024-03-01", "2024-03-02"}, tr.Dates)
	assert.Equal(t, []int{1, 0, 1}, tr.Created)
	assert.Equal(t, []int{0, 0, 1}, tr.Completed)
	assert.Equal(t, []int{0, 0, 25}, tr.TimeSpent)
}

func TestComputeTrendsClampsDays(t *testing.T) {
	tr := ComputeTrends(nil, 0, time.Now())
	assert.Len(t, tr.Labels, 1)
}

func TestDailyRollup(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	todos := []models.Todo{
		{CreatedAt: day.Add(time.Hour), CompletedAt: timePtr(day.Add(5 * time.Hour)), ActualDuration: intPtr(90)},
		{CreatedAt: day.Add(-24 * time.Hour), CompletedAt: timePtr(day.Add(6 * time.Hour))},
		{CreatedAt: day.Add(2 * time.Hour)},
	}
	logs := []models.ActivityLog{
		{Action: models.ActionPomodoroCompleted, CreatedAt: day.Add(3 * time.Hour)},
		{Action: models.ActionPomodoroCompleted, CreatedAt: day.Add(-time.Hour)},
		{Action: models.ActionUpdated, CreatedAt: day.Add(3 * time.Hour)},
	}

	row := DailyRollup(todos, logs, day)

	assert.Equal(t, "2024-06-01", row.Date)
	assert.Equal(t, 2, row.TasksCreated)
	assert.Equal(t, 2, row.TasksCompleted)
	assert.Equal(t, 90, row.MinutesTracked)
	assert.Equal(t, 1, row.PomodorosCompleted)
	assert.Equal(t, 4.0, row.ProductivityScore)
}
