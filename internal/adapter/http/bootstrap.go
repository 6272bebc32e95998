package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"taskboard/internal/adapter/http/routes"
	adaptertelemetry "taskboard/internal/adapter/telemetry"
	"taskboard/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// StartServerWithConfig serves the API until ctx is cancelled, then drains
// in-flight requests and writes a final snapshot.
func StartServerWithConfig(ctx context.Context, cfg *config.AppConfig, logger *otelzap.Logger, tel *adaptertelemetry.Container) error {
	container, err := NewContainer(ctx, cfg, logger, tel.NewTelemetryProbe(), tel.AppMetrics)
	if err != nil {
		return err
	}
	defer container.Close()

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		ProjectHandler: container.ProjectHandler,
		TodoHandler:    container.TodoHandler,
		StateHandler:   container.StateHandler,
		HealthHandler:  container.HealthHandler,
		ResponseCache:  container.ResponseCache,
		Telemetry:      container.Telemetry,
	}, tel.AppMetrics, logger, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("Server starting",
		zap.Int("port", cfg.HTTP.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("autosave", cfg.Autosave),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	if cfg.Autosave {
		container.Session.Save(shutdownCtx)
	}

	return nil
}
