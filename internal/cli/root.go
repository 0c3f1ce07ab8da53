// Package cli implements the quicklink command line.
package cli

import (
	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/SergeiKhy/quicklink/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env carries what PersistentPreRunE loaded to the subcommands.
type env struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand builds the quicklink command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "quicklink",
		Short:         "URL shortener with batched identifier allocation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default ./config.yaml or ./configs/config.yaml)")

	root.AddCommand(
		newServeCommand(e),
		newShortenCommand(e),
		newInspectCommand(e),
		newMigrateCommand(e),
	)
	return root
}
