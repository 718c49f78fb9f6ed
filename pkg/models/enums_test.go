package models

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"pending", StatusPending},
		{"COMPLETED", StatusCompleted},
		{"In Progress", StatusInProgress},
		{"in-progress", StatusInProgress},
		{" cancelled ", StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("done")
	assert.True(t, errors.Is(err, ErrInvalidEnum))
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("URGENT")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, got)

	got, err = ParsePriority("h")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, got)

	_, err = ParsePriority("critical")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseRecurrence(t *testing.T) {
	got, err := ParseRecurrence("")
	require.NoError(t, err)
	assert.Equal(t, RecurrenceNone, got)

	got, err = ParseRecurrence("Monthly")
	require.NoError(t, err)
	assert.Equal(t, RecurrenceMonthly, got)

	_, err = ParseRecurrence("fortnightly")
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestPriorityRankOrder(t *testing.T) {
	ps := []Priority{PriorityLow, Priority("someday"), PriorityMedium, PriorityUrgent, PriorityHigh}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Rank() < ps[j].Rank() })
	assert.Equal(t, []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow, Priority("someday")}, ps)
}

func TestTodoHelpers(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	todo := Todo{
		DueDate: &past,
		Status:  StatusPending,
		Tags:    []*Tag{{Name: "work"}, nil, {Name: "home"}},
		TimeEntries: []TimeEntry{
			{Duration: 90},
			{Duration: 30},
		},
	}
	assert.True(t, todo.IsOverdue(now))
	assert.Equal(t, []string{"work", "home"}, todo.TagNames())
	assert.Equal(t, int64(120), todo.TrackedSeconds())

	todo.Status = StatusCompleted
	assert.False(t, todo.IsOverdue(now))
}
