package service

import (
	"context"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeOn creates a todo completed at the given offset from testStart.
func completeOn(t *testing.T, svc *TodoService, clock *fakeClock, title string, offset time.Duration) *models.Todo {
	t.Helper()
	saved := clock.now
	clock.now = testStart.Add(offset)
	defer func() { clock.now = saved }()
	return mustCreate(t, svc, CreateTodoInput{Title: title, Status: models.StatusCompleted})
}

func TestStatsStreak(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	day := 24 * time.Hour

	completeOn(t, svc, clock, "today", 0)
	completeOn(t, svc, clock, "yesterday", -day)
	completeOn(t, svc, clock, "two days ago", -2*day)
	completeOn(t, svc, clock, "four days ago", -4*day)
	mustCreate(t, svc, CreateTodoInput{Title: "open"})

	stats, err := svc.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Streak)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 4, stats.Completed)
	assert.Equal(t, 80.0, stats.CompletionRate)
}

func TestStatsUserScope(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, UserInput{Username: "kim", Email: "kim@example.com"})
	require.NoError(t, err)
	mustCreate(t, svc, CreateTodoInput{Title: "mine", CreatedByID: &u.ID})
	mustCreate(t, svc, CreateTodoInput{Title: "assigned", AssigneeIDs: []uint{u.ID}})
	mustCreate(t, svc, CreateTodoInput{Title: "someone else's"})

	stats, err := svc.Stats(ctx, &u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestTrends(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	completeOn(t, svc, clock, "today", 0)
	completeOn(t, svc, clock, "yesterday", -24*time.Hour)

	tr, err := svc.Trends(ctx, 7, nil)
	require.NoError(t, err)
	require.Len(t, tr.Labels, 7)
	assert.Equal(t, "May 10", tr.Labels[6])
	assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 1}, tr.Completed)

	for _, days := range []int{0, 366} {
		_, err := svc.Trends(ctx, days, nil)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestDashboard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	past := testStart.Add(-time.Hour)
	tonight := testStart.Add(8 * time.Hour)
	mustCreate(t, svc, CreateTodoInput{Title: "late", DueDate: &past})
	mustCreate(t, svc, CreateTodoInput{Title: "tonight", DueDate: &tonight})
	running := mustCreate(t, svc, CreateTodoInput{Title: "running"})
	_, err := svc.StartTimer(ctx, running.ID, nil)
	require.NoError(t, err)

	dash, err := svc.Dashboard(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, dash.Stats.Total)
	assert.Len(t, dash.Trends.Labels, 7)
	assert.Equal(t, []string{"late"}, titles(dash.Overdue))
	assert.Equal(t, []string{"late", "tonight"}, titles(dash.DueToday))
	assert.Equal(t, []string{"running"}, titles(dash.ActiveTimers))
	require.NotEmpty(t, dash.RecentActivity)
	assert.Equal(t, models.ActionTimerStarted, dash.RecentActivity[0].Action)
}

func TestTimeByCategoryAndHeatmap(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Deep work"})
	require.NoError(t, err)
	todo := mustCreate(t, svc, CreateTodoInput{Title: "write", CategoryID: &c.ID})
	_, err = svc.UpdateTodo(ctx, todo.ID, TodoPatch{ActualDuration: Some(ptr(120)), Status: Some(models.StatusCompleted)})
	require.NoError(t, err)

	rows, err := svc.TimeByCategory(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Deep work", rows[0].Category)
	assert.Equal(t, 120, rows[0].Minutes)
	assert.Equal(t, 2.0, rows[0].Hours)

	cells, err := svc.Heatmap(ctx, 7, nil)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, int(clock.Now().Weekday()), cells[0].Weekday)
	assert.Equal(t, 9, cells[0].Hour)

	_, err = svc.Heatmap(ctx, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportIgnoresPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		mustCreate(t, svc, CreateTodoInput{Title: title})
	}

	todos, err := svc.Export(ctx, ListFilter{Limit: 1, Skip: 1})
	require.NoError(t, err)
	assert.Len(t, todos, 3)
}

func TestRollupUpserts(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	todo := mustCreate(t, svc, CreateTodoInput{Title: "focus"})
	_, err := svc.CompletePomodoro(ctx, todo.ID, nil)
	require.NoError(t, err)

	row, err := svc.Rollup(ctx, clock.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", row.Date)
	assert.Equal(t, 1, row.TasksCreated)
	assert.Equal(t, 0, row.TasksCompleted)
	assert.Equal(t, 1, row.PomodorosCompleted)

	_, err = svc.UpdateTodo(ctx, todo.ID, TodoPatch{Status: Some(models.StatusCompleted)})
	require.NoError(t, err)
	row, err = svc.Rollup(ctx, clock.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, row.TasksCompleted)
	assert.Equal(t, 1.5, row.ProductivityScore)

	rows, err := svc.ListAnalytics(ctx, 0, 7)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "the second rollup overwrites the first")
}

func TestRollupCountsOnlyThatDaysPomodoros(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	todo := mustCreate(t, svc, CreateTodoInput{Title: "focus"})

	_, err := svc.CompletePomodoro(ctx, todo.ID, nil)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	for i := 0; i < 2; i++ {
		_, err = svc.CompletePomodoro(ctx, todo.ID, nil)
		require.NoError(t, err)
	}

	row, err := svc.Rollup(ctx, testStart, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, row.PomodorosCompleted)

	row, err = svc.Rollup(ctx, clock.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", row.Date)
	assert.Equal(t, 2, row.PomodorosCompleted)
}
