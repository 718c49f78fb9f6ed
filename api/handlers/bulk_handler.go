package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
)

// BulkRequest DTO for the bulk endpoints
type BulkRequest struct {
	TodoIDs []uint `json:"todo_ids" binding:"required,min=1"`
	UserID  *uint  `json:"user_id"`
}

// BulkMoveRequest DTO for moving todos between categories; a null
// category_id removes the category.
type BulkMoveRequest struct {
	BulkRequest
	CategoryID *uint `json:"category_id"`
}

// BulkUpdateRequest DTO for setting the same columns on many todos
type BulkUpdateRequest struct {
	BulkRequest
	Status     *string                 `json:"status"`
	Priority   *string                 `json:"priority"`
	IsArchived *bool                   `json:"is_archived"`
	CategoryID service.Optional[*uint] `json:"category_id"`
}

func (r BulkUpdateRequest) changes() (service.BulkChanges, error) {
	changes := service.BulkChanges{IsArchived: r.IsArchived, CategoryID: r.CategoryID}
	if r.Status != nil {
		st, err := NormalizeStatus("status", *r.Status)
		if err != nil {
			return changes, err
		}
		if st != "" {
			changes.Status = &st
		}
	}
	if r.Priority != nil {
		p, err := NormalizePriority("priority", *r.Priority)
		if err != nil {
			return changes, err
		}
		if p != "" {
			changes.Priority = &p
		}
	}
	return changes, nil
}

type bulkFunc func(ctx context.Context, ids []uint, userID *uint) (service.BulkResult, error)

func (h *Handler) runBulk(c *gin.Context, fn bulkFunc) {
	var req BulkRequest
	if !bindJSON(c, &req) {
		return
	}
	h.writeBulk(c, fn, req)
}

func (h *Handler) writeBulk(c *gin.Context, fn bulkFunc, req BulkRequest) {
	result, err := fn(c.Request.Context(), req.TodoIDs, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BulkComplete marks todos completed.
func (h *Handler) BulkComplete(c *gin.Context) {
	h.runBulk(c, h.svc.BulkComplete)
}

// BulkArchive archives todos.
func (h *Handler) BulkArchive(c *gin.Context) {
	h.runBulk(c, h.svc.BulkArchive)
}

// BulkDelete deletes todos.
func (h *Handler) BulkDelete(c *gin.Context) {
	h.runBulk(c, h.svc.BulkDelete)
}

// BulkMove changes the category of todos.
func (h *Handler) BulkMove(c *gin.Context) {
	var req BulkMoveRequest
	if !bindJSON(c, &req) {
		return
	}
	h.writeBulk(c, func(ctx context.Context, ids []uint, userID *uint) (service.BulkResult, error) {
		return h.svc.BulkMove(ctx, ids, req.CategoryID, userID)
	}, req.BulkRequest)
}

// BulkUpdate applies arbitrary column changes to todos.
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	changes, err := req.changes()
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.writeBulk(c, func(ctx context.Context, ids []uint, userID *uint) (service.BulkResult, error) {
		return h.svc.BulkUpdate(ctx, ids, changes, userID)
	}, req.BulkRequest)
}
