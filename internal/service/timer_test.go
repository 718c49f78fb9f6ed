package service

import (
	"context"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerRoundTrip(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	todo := mustCreate(t, svc, CreateTodoInput{Title: "focus"})

	started, err := svc.StartTimer(ctx, todo.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)
	require.NotNil(t, started.TimerStartedAt)

	clock.Advance(30 * time.Second)
	state, err := svc.TimerStatus(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, state.Running)
	assert.Equal(t, int64(30), state.ElapsedSeconds)

	clock.Advance(60 * time.Second)
	stopped, err := svc.StopTimer(ctx, todo.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, stopped.TimerStartedAt)
	require.Len(t, stopped.TimeEntries, 1)
	assert.Equal(t, int64(90), stopped.TimeEntries[0].Duration)
	require.NotNil(t, stopped.ActualDuration)
	assert.Equal(t, 1, *stopped.ActualDuration)

	// A second session adds up across entries: 90s + 45s = 135s = 2 minutes.
	_, err = svc.StartTimer(ctx, todo.ID, nil)
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	stopped, err = svc.StopTimer(ctx, todo.ID, nil)
	require.NoError(t, err)
	require.Len(t, stopped.TimeEntries, 2)
	assert.Equal(t, 2, *stopped.ActualDuration)

	state, err = svc.TimerStatus(ctx, todo.ID)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Equal(t, int64(135), state.TotalSeconds)

	logs, err := svc.ListActivity(ctx, todo.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		models.ActionTimerStopped, models.ActionTimerStarted,
		models.ActionTimerStopped, models.ActionTimerStarted,
		models.ActionCreated,
	}, actions(logs))
}

func TestStopTimerNotRunning(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	todo := mustCreate(t, svc, CreateTodoInput{Title: "idle"})

	_, err := svc.StopTimer(ctx, todo.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.StopTimer(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.StartTimer(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletePomodoro(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	todo := mustCreate(t, svc, CreateTodoInput{Title: "tomato", PomodoroTarget: ptr(4)})

	got, err := svc.CompletePomodoro(ctx, todo.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PomodoroCount)

	got, err = svc.CompletePomodoro(ctx, todo.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PomodoroCount)

	logs, err := svc.ListActivity(ctx, todo.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ActionPomodoroCompleted, logs[0].Action)
	assert.EqualValues(t, 2, logs[0].Details["pomodoro_count"])

	_, err = svc.CompletePomodoro(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
