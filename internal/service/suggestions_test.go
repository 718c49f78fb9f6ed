package service

import (
	"context"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionTypes(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.Type
	}
	return out
}

func TestSuggestions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	past := testStart.Add(-24 * time.Hour)
	doneDep := mustCreate(t, svc, CreateTodoInput{Title: "done dep", Status: models.StatusCompleted})
	openDep := mustCreate(t, svc, CreateTodoInput{Title: "open dep"})

	t.Run("everything wrong", func(t *testing.T) {
		todo := mustCreate(t, svc, CreateTodoInput{
			Title:         "late",
			DueDate:       &past,
			DependencyIDs: []uint{doneDep.ID, openDep.ID},
		})
		got, err := svc.Suggestions(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{SuggestionWarning, SuggestionInfo, SuggestionWarning}, suggestionTypes(got))
		assert.Contains(t, got[2].Message, "1 dependencies")
	})

	t.Run("large estimate", func(t *testing.T) {
		todo := mustCreate(t, svc, CreateTodoInput{Title: "big", EstimatedDuration: ptr(180)})
		got, err := svc.Suggestions(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{SuggestionTip}, suggestionTypes(got))
	})

	t.Run("nothing to say", func(t *testing.T) {
		todo := mustCreate(t, svc, CreateTodoInput{Title: "fine", EstimatedDuration: ptr(30)})
		got, err := svc.Suggestions(ctx, todo.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("completed overdue todo is not late", func(t *testing.T) {
		todo := mustCreate(t, svc, CreateTodoInput{
			Title: "done", DueDate: &past, Status: models.StatusCompleted, EstimatedDuration: ptr(10),
		})
		got, err := svc.Suggestions(ctx, todo.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	_, err := svc.Suggestions(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
