package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
)

// CreateCategoryRequest DTO for creating a category
type CreateCategoryRequest struct {
	Name  string  `json:"name" binding:"required,max=50"`
	Color string  `json:"color" binding:"color"`
	Icon  *string `json:"icon" binding:"omitempty,max=50"`
}

// CreateTagRequest DTO for creating a tag
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=30"`
	Color string `json:"color" binding:"color"`
}

// CreateUserRequest DTO for registering a user
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Theme    string  `json:"theme" binding:"omitempty,oneof=light dark"`
}

// ListCategories lists categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory creates a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), service.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListTags lists tags.
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag creates a tag.
func (h *Handler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.svc.CreateTag(c.Request.Context(), service.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// ListUsers lists users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser registers a user.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), service.UserInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Theme:    req.Theme,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser returns one user.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListNotifications returns a user's notifications; ?unread=true filters read ones out.
func (h *Handler) ListNotifications(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	unread := c.Query("unread") == "true"
	notifications, err := h.svc.ListNotifications(c.Request.Context(), id, unread)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flags a notification as read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.MarkNotificationRead(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// DispatchReminders sends every due reminder once.
func (h *Handler) DispatchReminders(c *gin.Context) {
	result, err := h.svc.DispatchReminders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.reminders != nil {
		h.reminders.AddReminders(result.Notifications)
	}
	c.JSON(http.StatusOK, result)
}
