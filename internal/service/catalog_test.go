package service

import (
	"context"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesAndTags(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: " Work "})
	require.NoError(t, err)
	assert.Equal(t, "Work", c.Name)
	assert.Equal(t, models.DefaultColor, c.Color)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Work", Color: "#000000"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Home", Color: "#00FF00"})
	require.NoError(t, err)
	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Home", categories[0].Name)

	_, err = svc.CreateTag(ctx, TagInput{Name: "urgent", Color: "#FF0000"})
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, TagInput{Name: "urgent"})
	assert.ErrorIs(t, err, ErrConflict)
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "#FF0000", tags[0].Color)
}

func TestUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, UserInput{Username: "grace", Email: "Grace@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", u.Email)
	assert.Equal(t, "light", u.Theme)
	assert.True(t, u.IsActive)

	_, err = svc.CreateUser(ctx, UserInput{Username: "grace", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateUser(ctx, UserInput{Username: "other", Email: "grace@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateUser(ctx, UserInput{Username: "x", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace", got.Username)
	_, err = svc.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestComments(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()
	todo := mustCreate(t, svc, CreateTodoInput{Title: "discuss"})

	first, err := svc.AddComment(ctx, todo.ID, nil, "first")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.AddComment(ctx, todo.ID, nil, "second")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)

	_, err = svc.AddComment(ctx, todo.ID, nil, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddComment(ctx, todo.ID, ptr(uint(42)), "ghost")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddComment(ctx, 999, nil, "lost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListComments(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteComment(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteComment(ctx, first.ID), ErrNotFound)

	logs, err := svc.ListActivity(ctx, todo.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ActionCommented, models.ActionCommented, models.ActionCreated}, actions(logs))
}

func TestDispatchReminders(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, UserInput{Username: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	helper, err := svc.CreateUser(ctx, UserInput{Username: "helper", Email: "helper@example.com"})
	require.NoError(t, err)

	soon := testStart.Add(30 * time.Minute)
	later := testStart.Add(48 * time.Hour)
	due := mustCreate(t, svc, CreateTodoInput{
		Title: "call bank", ReminderAt: &soon, CreatedByID: &owner.ID, AssigneeIDs: []uint{owner.ID, helper.ID},
	})
	mustCreate(t, svc, CreateTodoInput{Title: "not yet", ReminderAt: &later, CreatedByID: &owner.ID})

	res, err := svc.DispatchReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{}, res, "nothing is due before the reminder time")

	clock.Advance(time.Hour)
	res, err = svc.DispatchReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Todos: 1, Notifications: 2}, res)

	res, err = svc.DispatchReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{}, res, "reminders are sent once")

	notes, err := svc.ListNotifications(ctx, helper.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationReminder, notes[0].Kind)
	assert.Equal(t, "Reminder: call bank", notes[0].Title)
	require.NotNil(t, notes[0].TodoID)
	assert.Equal(t, due.ID, *notes[0].TodoID)

	read, err := svc.MarkNotificationRead(ctx, notes[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	notes, err = svc.ListNotifications(ctx, helper.ID, true)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = svc.MarkNotificationRead(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ListNotifications(ctx, 999, false)
	assert.ErrorIs(t, err, ErrNotFound)

	// Moving the reminder re-arms it.
	again := clock.Now().Add(time.Minute)
	_, err = svc.UpdateTodo(ctx, due.ID, TodoPatch{ReminderAt: Some(&again)})
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	res, err = svc.DispatchReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Todos)
}
