package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"taskboard/internal/adapter/http/handler"
	. "taskboard/internal/adapter/http/middleware"
	"taskboard/internal/core/port"
	"taskboard/internal/core/telemetry"
	"taskboard/pkg/config"
)

type HandlersConfig struct {
	ProjectHandler *handler.ProjectHandler
	TodoHandler    *handler.TodoHandler
	StateHandler   *handler.StateHandler
	HealthHandler  *handler.HealthHandler
	ResponseCache  *ResponseCache
	Telemetry      port.Telemetry
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *otelzap.Logger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *otelzap.Logger, cfg *config.AppConfig) *gin.Engine {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(CurrentMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.HTTP.AllowedOrigins()))

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics, handlers.Telemetry))
	}

	if cfg.RateLimit.Enabled {
		rateLimiter := NewRateLimiter(logger.Logger, metrics, cfg.RateLimit)
		router.Use(rateLimiter.Middleware())
	}

	if handlers.ResponseCache != nil {
		handlers.ResponseCache.Skip("/healthz")
		router.Use(handlers.ResponseCache.Middleware())
	}

	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Health)
	}

	if handlers.ProjectHandler != nil {
		setupProjectRoutes(router, handlers.ProjectHandler)
	}

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	if handlers.StateHandler != nil {
		setupStateRoutes(router, handlers.StateHandler)
	}

	return router
}

func setupProjectRoutes(router *gin.Engine, h *handler.ProjectHandler) {
	projects := router.Group("/projects")
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.DELETE("", h.DeleteAllProjects)

		projects.GET("/active", h.GetActiveProject)
		projects.PUT("/active", h.SetActiveProject)
		projects.GET("/default", h.GetDefaultProject)
		projects.PUT("/default", h.SetDefaultProject)

		projects.GET("/:id", h.GetProject)
		projects.PATCH("/:id", h.RenameProject)
		projects.DELETE("/:id", h.DeleteProject)
	}
}

func setupTodoRoutes(router *gin.Engine, h *handler.TodoHandler) {
	todos := router.Group("/projects/:id/todos")
	{
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.DELETE("", h.DeleteAllTodos)

		todos.GET("/:todoId", h.GetTodo)
		todos.PATCH("/:todoId", h.UpdateTodo)
		todos.DELETE("/:todoId", h.DeleteTodo)
		todos.POST("/:todoId/toggle-completed", h.ToggleCompleted)
		todos.POST("/:todoId/toggle-expanded", h.ToggleExpanded)
	}
}

func setupStateRoutes(router *gin.Engine, h *handler.StateHandler) {
	state := router.Group("/state")
	{
		state.GET("", h.GetState)
		state.DELETE("", h.ClearState)
		state.POST("/save", h.SaveState)
		state.POST("/load", h.LoadState)
	}
}
