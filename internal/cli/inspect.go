package cli

import (
	"fmt"
	"time"

	"github.com/SergeiKhy/quicklink/internal/app"
	"github.com/spf13/cobra"
)

func newInspectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect CODE",
		Short: "Show a short URL and its click count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			a, err := app.New(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Registry.Stats(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code:      %s\n", rec.Code)
			fmt.Fprintf(out, "Long URL:  %s\n", rec.Destination)
			fmt.Fprintf(out, "Created:   %s\n", formatUnix(rec.CreatedAt))
			if rec.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:   %s\n", formatUnix(*rec.ExpiresAt))
			} else {
				fmt.Fprintf(out, "Expires:   never\n")
			}
			fmt.Fprintf(out, "Active:    %t\n", rec.Active)
			fmt.Fprintf(out, "Alias:     %t\n", rec.IsAlias)
			fmt.Fprintf(out, "Clicks:    %d\n", rec.ClickCount)
			return nil
		},
	}
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
