package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/export"
)

// Stats returns aggregate statistics, optionally scoped by ?user_id=.
func (h *Handler) Stats(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Trends returns per-day completed/created/time series.
func (h *Handler) Trends(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 7)
	if !ok {
		return
	}
	trends, err := h.svc.Trends(c.Request.Context(), days, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// TimeByCategory reports tracked minutes per category.
func (h *Handler) TimeByCategory(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.TimeByCategory(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Heatmap reports completions per weekday and hour.
func (h *Handler) Heatmap(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 30)
	if !ok {
		return
	}
	cells, err := h.svc.Heatmap(c.Request.Context(), days, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

// Dashboard combines stats, trends and the todos needing attention.
func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	dash, err := h.svc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Export writes the filtered todo list as JSON, CSV or ICS.
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "format"})
		return
	}
	var q ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		h.respondError(c, err)
		return
	}
	todos, err := h.svc.Export(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, todos, h.svc.Now().UTC()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ListAnalytics returns stored daily rollups for ?user_id= (0 for all users).
func (h *Handler) ListAnalytics(c *gin.Context) {
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 30)
	if !ok {
		return
	}
	var uid uint
	if userID != nil {
		uid = *userID
	}
	rows, err := h.svc.ListAnalytics(c.Request.Context(), uid, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RollupRequest DTO for computing a daily analytics row
type RollupRequest struct {
	Date   *FlexTime `json:"date"`
	UserID *uint     `json:"user_id"`
}

// Rollup computes and stores the analytics row for a day (today by default).
func (h *Handler) Rollup(c *gin.Context) {
	var req RollupRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	day := h.svc.Now()
	if req.Date != nil {
		// Interpret a bare date as that calendar day in the server timezone.
		d := req.Date.Time
		day = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, h.svc.Location())
	}
	row, err := h.svc.Rollup(c.Request.Context(), day, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
