package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTodos() []models.Todo {
	due := time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC)
	done := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	desc := "Line one\nand, a comma; too"
	est := 90
	return []models.Todo{
		{
			ID: 1, Title: "Launch", Description: &desc, Status: models.StatusCompleted,
			Priority: models.PriorityUrgent, DueDate: &due, CompletedAt: &done,
			CreatedAt:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Category:          &models.Category{Name: "Work"},
			Tags:              []*models.Tag{{Name: "q3"}, {Name: "launch"}},
			EstimatedDuration: &est,
			PomodoroCount:     3,
		},
		{ID: 2, Title: "No date", Status: models.StatusPending, Priority: models.PriorityLow},
		{ID: 3, Title: "Later", Status: models.StatusInProgress, Priority: models.PriorityMedium, DueDate: &due},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "CSV": FormatCSV, " ics ": FormatICS} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, "text/calendar; charset=utf-8", FormatICS.ContentType())
	assert.Equal(t, "todos.csv", FormatCSV.Filename())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTodos()))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "completed", first["status"])
	assert.Equal(t, "Work", first["category"])
	assert.Equal(t, []interface{}{"q3", "launch"}, first["tags"])
	assert.Equal(t, "2024-07-01T15:30:00Z", first["due_date"])
	assert.Nil(t, records[1]["category"])
	assert.Nil(t, records[1]["due_date"])
	assert.Len(t, first, len(Columns))
}

func TestWriteCSV(t *testing.T) {
	todos := sampleTodos()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, todos))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(todos)+1, "header plus one row per todo")
	assert.Equal(t, Columns, rows[0])

	assert.Equal(t, []string{
		"1", "Launch", "Line one\nand, a comma; too", "completed", "urgent",
		"2024-07-01T15:30:00Z", "Work", "q3,launch", "2024-06-01T00:00:00Z",
		"2024-06-30T08:00:00Z", "false", "90", "", "3", "",
	}, rows[1])
	assert.Equal(t, "", rows[2][2], "null description is empty")
	assert.Equal(t, "", rows[2][5], "null due date is empty")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteICS(t *testing.T) {
	todos := sampleTodos()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, todos, now))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"), "only todos with a due date")
	assert.Equal(t, 2, strings.Count(out, "END:VEVENT"))
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n", "every line ends in CRLF")

	assert.Contains(t, out, "DTSTAMP:20240615T120000Z\r\n")
	assert.Contains(t, out, "DTSTART:20240701T153000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Launch\r\n")
	assert.Contains(t, out, `DESCRIPTION:Line one\nand\, a comma\; too`)
	assert.Contains(t, out, "STATUS:COMPLETED\r\n")
	assert.Contains(t, out, "STATUS:NEEDS-ACTION\r\n")
	assert.Contains(t, out, "UID:"+EventUID(1)+"\r\n")
	assert.NotContains(t, out, "No date")
}

func TestEventUIDIsStable(t *testing.T) {
	assert.Equal(t, EventUID(7), EventUID(7))
	assert.NotEqual(t, EventUID(7), EventUID(8))
	assert.True(t, strings.HasSuffix(EventUID(7), "@todoflow"))
}

func TestWriteFoldedLongLines(t *testing.T) {
	title := strings.Repeat("ü", 60)
	todos := []models.Todo{{ID: 1, Title: title, DueDate: &time.Time{}}}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, todos, time.Now()))

	for _, l := range strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(l), icsLineLimit)
	}
	unfolded := strings.ReplaceAll(buf.String(), "\r\n ", "")
	assert.Contains(t, unfolded, "SUMMARY:"+title)
}

func TestWriteICSInvalidUTF8Title(t *testing.T) {
	title := "x" + strings.Repeat("\x80", 100)
	todos := []models.Todo{{ID: 1, Title: title, DueDate: &time.Time{}}}

	done := make(chan error, 1)
	var buf bytes.Buffer
	go func() { done <- WriteICS(&buf, todos, time.Now()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("WriteICS did not return")
	}
	assert.Contains(t, buf.String(), "SUMMARY:x�\r\n")
}

func TestWriteFoldedContinuationBytes(t *testing.T) {
	line := "SUMMARY:" + strings.Repeat("\x80", 200)

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		w := bufio.NewWriter(&buf)
		writeFolded(w, line)
		_ = w.Flush()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("writeFolded did not return")
	}
	for _, l := range strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(l), icsLineLimit)
	}
	assert.Equal(t, line, strings.ReplaceAll(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n ", ""))
}
