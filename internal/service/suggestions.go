package service

import (
	"context"
	"fmt"

	"github.com/kutbudev/todoflow/pkg/models"
)

// Suggestion kinds.
const (
	SuggestionWarning = "warning"
	SuggestionInfo    = "info"
	SuggestionTip     = "tip"
)

// largeEstimate is the estimate, in minutes, above which splitting is suggested.
const largeEstimate = 120

// Suggestion is a hint about how to move a todo forward.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Suggestions inspects a todo and its dependencies and returns hints.
func (s *TodoService) Suggestions(ctx context.Context, id uint) ([]Suggestion, error) {
	todo, err := loadTodo(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	suggestions := []Suggestion{}
	if todo.IsOverdue(s.clock()) {
		suggestions = append(suggestions, Suggestion{
			Type:    SuggestionWarning,
			Message: "This todo is overdue. Consider rescheduling it or raising its priority.",
		})
	}
	if todo.EstimatedDuration == nil {
		suggestions = append(suggestions, Suggestion{
			Type:    SuggestionInfo,
			Message: "Add an estimated duration to plan your time better.",
		})
	}

	incomplete := 0
	for _, dep := range todo.Dependencies {
		if dep.Status != models.StatusCompleted {
			incomplete++
		}
	}
	if incomplete > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:    SuggestionWarning,
			Message: fmt.Sprintf("%d dependencies are not completed yet.", incomplete),
		})
	}

	if todo.EstimatedDuration != nil && *todo.EstimatedDuration > largeEstimate {
		suggestions = append(suggestions, Suggestion{
			Type:    SuggestionTip,
			Message: "This is a large task. Consider breaking it into subtasks.",
		})
	}
	return suggestions, nil
}
