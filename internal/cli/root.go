// Package cli implements the taskboard command line.
package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apphttp "taskboard/internal/adapter/http"
	"taskboard/pkg/config"
	"taskboard/pkg/tracing"
)

var version = "dev"

// app carries what every subcommand resolves from the global flags.
type app struct {
	configPath string
	driver     string
	dataDir    string

	cfg    *config.AppConfig
	logger *otelzap.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Projects and todos with a durable single-document store",
		Long: `taskboard keeps projects and their todos in one JSON document stored
under a single key. Run "taskboard serve" for the HTTP API, or use the
project, todo and state commands to work on the stored document directly.

Examples:
  taskboard project add Work
  taskboard todo add "Finish report" --due 2024-06-20 --priority urgent
  taskboard todo ls
  taskboard serve --driver sqlite`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "storage driver: memory, file, sqlite, postgres, mysql or redis")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory for the file and sqlite drivers")

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.projectCmd())
	root.AddCommand(a.todoCmd())
	root.AddCommand(a.stateCmd())

	return root
}

// Execute runs the root command with SIGINT and SIGTERM cancelling the context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, func(cfg *config.AppConfig) {
		if a.driver != "" {
			cfg.Storage.Driver = a.driver
		}

		if a.dataDir != "" {
			cfg.Storage.DataDir = a.dataDir
		}
	})
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger

	return nil
}

// withContainer opens the configured backend for one command and runs fn in a
// span named after the command. Commands other than serve always persist
// their change, whatever autosave says.
func (a *app) withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *apphttp.Container) error) error {
	cfg := *a.cfg
	cfg.Autosave = true

	attrs := []attribute.KeyValue{attribute.String("storage.driver", cfg.Storage.Driver)}

	return tracing.SpanWrapper(cmd.Context(), spanName(cmd), attrs, func(ctx context.Context) error {
		c, err := apphttp.NewContainer(ctx, &cfg, a.logger, nil, nil)
		if err != nil {
			return err
		}
		defer c.Close()

		tracing.AddSpanEvent(trace.SpanFromContext(ctx), "state.opened", []attribute.KeyValue{
			attribute.Int("state.projects", len(c.Manager.Projects())),
		})

		return fn(ctx, c)
	})
}

// spanName turns "taskboard todo add" into "cli.todo.add".
func spanName(cmd *cobra.Command) string {
	parts := strings.Fields(cmd.CommandPath())
	if len(parts) == 0 {
		return "cli"
	}
	parts[0] = "cli"

	return strings.Join(parts, ".")
}
