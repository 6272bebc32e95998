package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apphttp "taskboard/internal/adapter/http"
	adaptertelemetry "taskboard/internal/adapter/telemetry"
)

func (a *app) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the projects, todos and state endpoints over HTTP until interrupted.

Examples:
  taskboard serve
  taskboard serve --port 9000 --driver redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}

			ctx := cmd.Context()
			defer a.logger.Sync()

			tel, err := adaptertelemetry.NewContainer(ctx, a.cfg, a.logger.Logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
					a.logger.Warn("Telemetry shutdown failed", zap.Error(err))
				}
			}()

			return apphttp.StartServerWithConfig(ctx, a.cfg, a.logger, tel)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port")

	return cmd
}
