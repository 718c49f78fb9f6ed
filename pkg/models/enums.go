package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEnum is returned when a string does not name a known enum value.
var ErrInvalidEnum = errors.New("invalid enum value")

// Status represents the lifecycle state of a todo
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Priority represents the priority of a todo
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// RecurrencePattern controls how recurring instances are spaced.
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

var recurrencePatterns = []RecurrencePattern{
	RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly,
}

// Rank orders priorities for sorting: urgent first, unknown values last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// ParseStatus converts user input such as "In Progress" or "COMPLETED" to a Status.
func ParseStatus(s string) (Status, error) {
	v := Status(normalizeEnum(s))
	for _, st := range Statuses {
		if v == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: status %q", ErrInvalidEnum, s)
}

// ParsePriority converts user input to a Priority.
// Single-letter shorthands (L, M, H, U) are accepted as well.
func ParsePriority(s string) (Priority, error) {
	v := normalizeEnum(s)
	switch v {
	case "l":
		return PriorityLow, nil
	case "m":
		return PriorityMedium, nil
	case "h":
		return PriorityHigh, nil
	case "u":
		return PriorityUrgent, nil
	}
	for _, p := range Priorities {
		if Priority(v) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: priority %q", ErrInvalidEnum, s)
}

// ParseRecurrence converts user input to a RecurrencePattern. Empty input means none.
func ParseRecurrence(s string) (RecurrencePattern, error) {
	v := normalizeEnum(s)
	if v == "" {
		return RecurrenceNone, nil
	}
	for _, r := range recurrencePatterns {
		if RecurrencePattern(v) == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: recurrence pattern %q", ErrInvalidEnum, s)
}
