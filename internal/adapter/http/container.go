package http

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"taskboard/internal/adapter/database"
	"taskboard/internal/adapter/http/handler"
	"taskboard/internal/adapter/http/middleware"
	"taskboard/internal/adapter/storage"
	"taskboard/internal/core/port"
	"taskboard/internal/core/service"
	"taskboard/internal/core/telemetry"
	"taskboard/pkg/config"
)

// Container is the composition root shared by the HTTP server and the CLI.
type Container struct {
	Repo    port.StateRepository
	Storage *storage.LocalStorage
	Manager *service.ProjectManager
	Session *service.Session

	ProjectHandler *handler.ProjectHandler
	TodoHandler    *handler.TodoHandler
	StateHandler   *handler.StateHandler
	HealthHandler  *handler.HealthHandler
	ResponseCache  *middleware.ResponseCache
	Telemetry      port.Telemetry
}

// NewContainer opens the configured backend and loads the stored state into a
// fresh ProjectManager. probe and metrics may be nil.
func NewContainer(ctx context.Context, cfg *config.AppConfig, logger *otelzap.Logger, probe port.Telemetry, metrics *telemetry.AppMetrics) (*Container, error) {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	repo, err := database.Open(ctx, cfg.Storage, probe, sqlLogger(cfg.Log))
	if err != nil {
		return nil, err
	}

	localStorage := storage.NewLocalStorage(repo,
		storage.WithKey(cfg.Storage.Key),
		storage.WithLogger(logger.Logger),
		storage.WithTelemetry(probe),
		storage.WithMetrics(metrics),
	)

	manager := service.NewProjectManager(localStorage,
		service.WithTelemetry(probe),
		service.WithLogger(logger.Logger),
	)
	manager.LoadFromStorage(ctx)

	var responseCache *middleware.ResponseCache
	if cfg.HTTP.CacheTTL > 0 {
		responseCache = middleware.NewResponseCache(cfg.HTTP.CacheTTL, logger.Logger, metrics)
		manager.Subscribe(responseCache.Invalidate)
	}

	session := service.NewSession(manager, cfg.Autosave)

	return &Container{
		Repo:    repo,
		Storage: localStorage,
		Manager: manager,
		Session: session,

		ProjectHandler: handler.NewProjectHandler(session, logger),
		TodoHandler:    handler.NewTodoHandler(session, logger),
		StateHandler:   handler.NewStateHandler(session, localStorage, logger),
		HealthHandler:  handler.NewHealthHandler(localStorage, cfg.Storage.Driver),
		ResponseCache:  responseCache,
		Telemetry:      probe,
	}, nil
}

func (c *Container) Close() error {
	return c.Repo.Close()
}

func sqlLogger(cfg config.LogConfig) zerolog.Logger {
	if !cfg.SQLQueries {
		return zerolog.Nop()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
