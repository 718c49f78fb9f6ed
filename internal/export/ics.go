package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kutbudev/todoflow/pkg/models"
)

const (
	icsTimeLayout = "20060102T150405Z"
	icsLineLimit  = 75
	prodID        = "-//todoflow//todoflow//EN"
)

// uidNamespace seeds the deterministic event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://todoflow.kutbu.dev/todos"))

// EventUID is stable for a todo id, so re-imports update instead of duplicating.
func EventUID(id uint) string {
	return uuid.NewSHA1(uidNamespace, []byte("todo:"+strconv.FormatUint(uint64(id), 10))).String() + "@todoflow"
}

// WriteICS writes an RFC 5545 calendar with one VEVENT per todo that has a
// due date. now is used for DTSTAMP.
func WriteICS(w io.Writer, todos []models.Todo, now time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		writeFolded(bw, s)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	stamp := now.UTC().Format(icsTimeLayout)
	for i := range todos {
		t := &todos[i]
		if t.DueDate == nil {
			continue
		}
		line("BEGIN:VEVENT")
		line("UID:" + EventUID(t.ID))
		line("DTSTAMP:" + stamp)
		line("DTSTART:" + t.DueDate.UTC().Format(icsTimeLayout))
		line("SUMMARY:" + escapeText(t.Title))
		if t.Description != nil && *t.Description != "" {
			line("DESCRIPTION:" + escapeText(*t.Description))
		}
		if t.Category != nil {
			line("CATEGORIES:" + escapeText(t.Category.Name))
		}
		line("PRIORITY:" + strconv.Itoa(icsPriority(t.Priority)))
		line("STATUS:" + icsStatus(t.Status))
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	return bw.Flush()
}

func icsStatus(s models.Status) string {
	if s == models.StatusCompleted {
		return "COMPLETED"
	}
	return "NEEDS-ACTION"
}

// icsPriority maps to the 1 (highest) to 9 (lowest) scale.
func icsPriority(p models.Priority) int {
	switch p {
	case models.PriorityUrgent:
		return 1
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 5
	case models.PriorityLow:
		return 7
	default:
		return 0
	}
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// escapeText escapes s for a TEXT value. Invalid UTF-8 runs become U+FFFD.
func escapeText(s string) string {
	return textEscaper.Replace(strings.ToValidUTF8(s, "\uFFFD"))
}

// writeFolded writes s with CRLF, folding lines longer than 75 octets
// without splitting a UTF-8 sequence.
func writeFolded(w *bufio.Writer, s string) {
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8Start(s[cut]) {
			cut--
		}
		if cut == 0 {
			// no rune start in range; split the bytes as they are
			cut = limit
		}
		w.WriteString(s[:cut])
		w.WriteString("\r\n ")
		s = s[cut:]
		limit = icsLineLimit - 1
	}
	w.WriteString(s)
	w.WriteString("\r\n")
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
