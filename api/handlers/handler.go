package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
)

// ReminderCounter receives the number of notifications each dispatch created.
type ReminderCounter interface {
	AddReminders(n int)
}

// Handler serves the /v1 API on top of a TodoService.
type Handler struct {
	svc       *service.TodoService
	log       *slog.Logger
	reminders ReminderCounter
}

// New creates a Handler. reminders may be nil.
func New(svc *service.TodoService, log *slog.Logger, reminders ReminderCounter) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log, reminders: reminders}
}

// Health reports whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.svc.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
