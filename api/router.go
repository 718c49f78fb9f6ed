package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/api/handlers"
	"github.com/kutbudev/todoflow/api/middleware"
	"github.com/kutbudev/todoflow/internal/observability"
	"github.com/kutbudev/todoflow/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Options configures NewRouter.
type Options struct {
	Service *service.TodoService
	Logger  *slog.Logger
	// APIKey, when set, guards every /v1 route.
	APIKey string
	// Metrics is optional; MetricsPath defaults to /metrics.
	Metrics     *observability.Metrics
	MetricsPath string
	// TracingService enables otelgin spans under this service name.
	TracingService string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if opts.TracingService != "" {
		r.Use(otelgin.Middleware(opts.TracingService))
	}
	r.Use(middleware.RequestLogger(log))

	var reminders handlers.ReminderCounter
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
		reminders = opts.Metrics
	}

	h := handlers.New(opts.Service, log, reminders)
	r.GET("/health", h.Health)

	// API v1 routes
	v1 := r.Group("/v1", middleware.APIKey(opts.APIKey))
	{
		v1.GET("/todos", h.ListTodos)
		v1.POST("/todos", h.CreateTodo)
		v1.GET("/todos/:id", h.GetTodo)
		v1.PUT("/todos/:id", h.UpdateTodo)
		v1.DELETE("/todos/:id", h.DeleteTodo)

		v1.GET("/todos/:id/comments", h.ListComments)
		v1.POST("/todos/:id/comments", h.CreateComment)
		v1.DELETE("/comments/:id", h.DeleteComment)
		v1.GET("/todos/:id/activity", h.ListActivity)

		v1.POST("/todos/:id/timer/start", h.StartTimer)
		v1.POST("/todos/:id/timer/stop", h.StopTimer)
		v1.GET("/todos/:id/timer", h.TimerStatus)
		v1.POST("/todos/:id/pomodoro", h.CompletePomodoro)
		v1.POST("/todos/:id/template", h.MakeTemplate)
		v1.POST("/todos/:id/recurring", h.CreateRecurring)
		v1.GET("/todos/:id/suggestions", h.Suggestions)

		v1.GET("/templates", h.ListTemplates)
		v1.POST("/templates/:id/instantiate", h.InstantiateTemplate)

		bulk := v1.Group("/bulk")
		bulk.POST("/complete", h.BulkComplete)
		bulk.POST("/archive", h.BulkArchive)
		bulk.POST("/delete", h.BulkDelete)
		bulk.POST("/move", h.BulkMove)
		bulk.POST("/update", h.BulkUpdate)

		v1.GET("/categories", h.ListCategories)
		v1.POST("/categories", h.CreateCategory)
		v1.GET("/tags", h.ListTags)
		v1.POST("/tags", h.CreateTag)
		v1.GET("/users", h.ListUsers)
		v1.POST("/users", h.CreateUser)
		v1.GET("/users/:id", h.GetUser)
		v1.GET("/users/:id/notifications", h.ListNotifications)
		v1.POST("/notifications/:id/read", h.MarkNotificationRead)
		v1.POST("/reminders/dispatch", h.DispatchReminders)

		v1.GET("/stats", h.Stats)
		v1.GET("/stats/trends", h.Trends)
		v1.GET("/stats/time-by-category", h.TimeByCategory)
		v1.GET("/stats/heatmap", h.Heatmap)
		v1.GET("/dashboard", h.Dashboard)
		v1.GET("/export", h.Export)
		v1.GET("/analytics", h.ListAnalytics)
		v1.POST("/analytics/rollup", h.Rollup)
	}

	return r, nil
}
