package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/app"
	"github.com/eleven-am/bistro/internal/logger"
)

func newServeCmd() *cobra.Command {
	var (
		port         int
		noPlayground bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		Long: `Starts the HTTP server. POST /graphql executes operations, GET /graphql serves
the playground and GET /healthz reports backend health. SIGINT or SIGTERM
drains in-flight requests before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if noPlayground {
				cfg.GraphQL.Playground = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.CLI().Warn("shutdown cleanup failed", zap.Error(err))
				}
			}()

			logger.CLI().Info("starting bistro",
				zap.String("addr", cfg.Addr()),
				zap.String("backend", cfg.Storage.Backend))

			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	cmd.Flags().BoolVar(&noPlayground, "no-playground", false, "Disable the GraphQL playground")

	return cmd
}
