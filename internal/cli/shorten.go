package cli

import (
	"fmt"
	"time"

	"github.com/SergeiKhy/quicklink/internal/app"
	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/spf13/cobra"
)

func newShortenCommand(e *env) *cobra.Command {
	var (
		longURL string
		alias   string
		days    int
	)

	cmd := &cobra.Command{
		Use:   "shorten",
		Short: "Create a short URL",
		Example: `  quicklink shorten --url "https://example.com/some/long/path"
  quicklink shorten --url "https://example.com" --alias launch --days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			input := &models.CreateURLInput{Destination: longURL}
			if alias != "" {
				input.Alias = &alias
			}
			if cmd.Flags().Changed("days") {
				input.ExpiryDays = &days
			}

			a, err := app.New(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Registry.Create(ctx, input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code:      %s\n", rec.Code)
			fmt.Fprintf(out, "Short URL: %s/%s\n", e.cfg.App.BaseURL, rec.Code)
			if rec.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:   %s\n", time.Unix(*rec.ExpiresAt, 0).UTC().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&longURL, "url", "u", "", "long URL to shorten")
	cmd.Flags().StringVarP(&alias, "alias", "a", "", "custom alias instead of a generated code")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "expire after this many days (1-365)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
