// Package export renders todo lists as JSON, CSV or iCalendar.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
)

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
)

// ParseFormat resolves a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// Filename is the suggested download name for f.
func (f Format) Filename() string {
	return "todos." + string(f)
}

// Columns is the field order shared by the JSON records and the CSV header.
var Columns = []string{
	"id", "title", "description", "status", "priority", "due_date", "category",
	"tags", "created_at", "completed_at", "is_archived", "estimated_duration",
	"actual_duration", "pomodoro_count", "notes",
}

// Record is the flattened export shape of a todo.
type Record struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	Category          *string    `json:"category"`
	Tags              []string   `json:"tags"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	IsArchived        bool       `json:"is_archived"`
	EstimatedDuration *int       `json:"estimated_duration"`
	ActualDuration    *int       `json:"actual_duration"`
	PomodoroCount     int        `json:"pomodoro_count"`
	Notes             *string    `json:"notes"`
}

// NewRecord flattens t. The category and tags must be preloaded.
func NewRecord(t *models.Todo) Record {
	r := Record{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Status:            string(t.Status),
		Priority:          string(t.Priority),
		DueDate:           utc(t.DueDate),
		Tags:              t.TagNames(),
		CreatedAt:         t.CreatedAt.UTC(),
		CompletedAt:       utc(t.CompletedAt),
		IsArchived:        t.IsArchived,
		EstimatedDuration: t.EstimatedDuration,
		ActualDuration:    t.ActualDuration,
		PomodoroCount:     t.PomodoroCount,
		Notes:             t.Notes,
	}
	if t.Category != nil {
		name := t.Category.Name
		r.Category = &name
	}
	return r
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Write dispatches to the writer for f.
func Write(w io.Writer, f Format, todos []models.Todo, now time.Time) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, todos)
	case FormatICS:
		return WriteICS(w, todos, now)
	default:
		return WriteJSON(w, todos)
	}
}

// WriteJSON writes todos as an indented JSON array of records.
func WriteJSON(w io.Writer, todos []models.Todo) error {
	records := make([]Record, len(todos))
	for i := range todos {
		records[i] = NewRecord(&todos[i])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes a header row and one row per todo. Nulls become empty
// strings and tags are comma-joined.
func WriteCSV(w io.Writer, todos []models.Todo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range todos {
		r := NewRecord(&todos[i])
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Title,
			deref(r.Description),
			r.Status,
			r.Priority,
			formatTime(r.DueDate),
			deref(r.Category),
			strings.Join(r.Tags, ","),
			r.CreatedAt.Format(time.RFC3339),
			formatTime(r.CompletedAt),
			strconv.FormatBool(r.IsArchived),
			formatInt(r.EstimatedDuration),
			formatInt(r.ActualDuration),
			strconv.Itoa(r.PomodoroCount),
			deref(r.Notes),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
