package cli

import (
	"fmt"

	"github.com/SergeiKhy/quicklink/internal/repository"
	"github.com/spf13/cobra"
)

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema for the postgres or sqlite backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := repository.Migrate(commandContext(cmd), e.cfg)
			if err != nil {
				return err
			}

			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Backend %q has no schema, nothing to migrate.\n", e.cfg.Storage.Backend)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema for %q is up to date.\n", e.cfg.Storage.Backend)
			return nil
		},
	}
}
