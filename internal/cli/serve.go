package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/SergeiKhy/quicklink/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					e.logger.Warn("Failed to close storage", zap.Error(err))
				}
			}()

			e.logger.Info("Starting quicklink",
				zap.String("backend", e.cfg.Storage.Backend),
				zap.String("base_url", e.cfg.App.BaseURL),
			)
			return a.Run(ctx)
		},
	}
}

// commandContext falls back to Background when the command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
