package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Helper functions shared across commands

func truncateString(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return uint(id), nil
}

func parseIDs(args []string) ([]uint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one todo id is required")
	}
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatDateTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatMinutes(m *int) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%dm", *m)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
