package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/pkg/models"
)

// timeLayouts are tried in order. Layouts without an offset are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps as well as bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// FlexTime is a JSON time that also accepts "2006-01-02" style input.
type FlexTime struct {
	time.Time
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseTime(s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// Ptr returns nil for a nil receiver so optional request fields map
// directly onto *time.Time model fields.
func (f *FlexTime) Ptr() *time.Time {
	if f == nil {
		return nil
	}
	t := f.Time
	return &t
}

func optionalTime(o service.Optional[*FlexTime]) service.Optional[*time.Time] {
	if !o.Set {
		return service.Optional[*time.Time]{}
	}
	return service.Some(o.Value.Ptr())
}

// NormalizeStatus parses a status field; empty input yields the zero value.
func NormalizeStatus(field, s string) (models.Status, error) {
	if s == "" {
		return "", nil
	}
	st, err := models.ParseStatus(s)
	if err != nil {
		return "", service.Invalid(field, "unknown status %q", s)
	}
	return st, nil
}

// NormalizePriority accepts descriptive names ("High") and shorthands ("H").
func NormalizePriority(field, s string) (models.Priority, error) {
	if s == "" {
		return "", nil
	}
	p, err := models.ParsePriority(s)
	if err != nil {
		return "", service.Invalid(field, "unknown priority %q", s)
	}
	return p, nil
}

// NormalizeRecurrence maps empty input to none.
func NormalizeRecurrence(field, s string) (models.RecurrencePattern, error) {
	r, err := models.ParseRecurrence(s)
	if err != nil {
		return "", service.Invalid(field, "unknown recurrence pattern %q", s)
	}
	return r, nil
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "field": name})
		return 0, false
	}
	return uint(id), true
}

// queryUserID reads the optional ?user_id= scope.
func queryUserID(c *gin.Context) (*uint, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id", "field": "user_id"})
		return nil, false
	}
	u := uint(id)
	return &u, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "field": name})
		return 0, false
	}
	return n, true
}

// bindJSON binds the body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError maps service errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": verr.Field})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
