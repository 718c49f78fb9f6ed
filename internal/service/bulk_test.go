package service

import (
	"context"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeIDsWithGap creates todos 1 and 3 and leaves id 2 missing.
func threeIDsWithGap(t *testing.T, svc *TodoService) []uint {
	t.Helper()
	ctx := context.Background()
	first := mustCreate(t, svc, CreateTodoInput{Title: "one"})
	gone := mustCreate(t, svc, CreateTodoInput{Title: "two"})
	third := mustCreate(t, svc, CreateTodoInput{Title: "three"})
	_, err := svc.DeleteTodo(ctx, gone.ID, nil)
	require.NoError(t, err)
	return []uint{first.ID, gone.ID, third.ID}
}

func TestBulkArchiveReportsRequestedAndMatched(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	ids := threeIDsWithGap(t, svc)

	res, err := svc.BulkArchive(ctx, ids, nil)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Requested: 3, Matched: 2}, res)

	for _, id := range []uint{ids[0], ids[2]} {
		todo, err := svc.GetTodo(ctx, id)
		require.NoError(t, err)
		assert.True(t, todo.IsArchived)

		logs, err := svc.ListActivity(ctx, id, 1)
		require.NoError(t, err)
		assert.Equal(t, models.ActionBulkUpdated, logs[0].Action)
		assert.Equal(t, "true", logs[0].Details["is_archived"])
	}

	logs, err := svc.ListActivity(ctx, ids[1], 0)
	require.NoError(t, err)
	assert.NotContains(t, actions(logs), models.ActionBulkUpdated)
}

func TestBulkCompleteStampsCompletion(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	earlier := mustCreate(t, svc, CreateTodoInput{Title: "done before", Status: models.StatusCompleted})
	open := mustCreate(t, svc, CreateTodoInput{Title: "open"})

	clock.Advance(time.Hour)
	res, err := svc.BulkComplete(ctx, []uint{earlier.ID, open.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matched)

	got, err := svc.GetTodo(ctx, earlier.ID)
	require.NoError(t, err)
	assert.True(t, got.CompletedAt.Equal(testStart), "existing stamps are kept")

	got, err = svc.GetTodo(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(clock.Now()))
}

func TestBulkMove(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	home, err := svc.CreateCategory(ctx, CategoryInput{Name: "Home"})
	require.NoError(t, err)
	todo := mustCreate(t, svc, CreateTodoInput{Title: "dishes"})

	_, err = svc.BulkMove(ctx, []uint{todo.ID}, &home.ID, nil)
	require.NoError(t, err)
	got, err := svc.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, home.ID, *got.CategoryID)

	_, err = svc.BulkMove(ctx, []uint{todo.ID}, nil, nil)
	require.NoError(t, err)
	got, err = svc.GetTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = svc.BulkMove(ctx, []uint{todo.ID}, ptr(uint(77)), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkUpdateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.BulkUpdate(ctx, nil, BulkChanges{IsArchived: ptr(true)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BulkUpdate(ctx, []uint{1}, BulkChanges{}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	ids := threeIDsWithGap(t, svc)

	res, err := svc.BulkDelete(ctx, ids, nil)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Requested: 3, Matched: 2}, res)

	todos, err := svc.ListTodos(ctx, ListFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Empty(t, todos)
}
