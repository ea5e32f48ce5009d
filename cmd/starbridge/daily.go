package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/starbridge/internal/app"
	"github.com/MrWong99/starbridge/internal/daily"
)

func (c *cli) newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Inspect the daily rotation",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current daily info",
			Args:  cobra.NoArgs,
			RunE:  c.dailyShow,
		},
		&cobra.Command{
			Use:   "check",
			Short: "Report whether the daily info changed since the last stored snapshot",
			Long: `Fetch the live settings and compare them with the snapshot in the
configured database, exactly as the scheduler would. Nothing is stored
or posted.`,
			Args: cobra.NoArgs,
			RunE: c.dailyCheck,
		},
	)
	return cmd
}

func (c *cli) dailyApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, app.WithoutDiscord())
}

func (c *cli) dailyShow(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	application, err := c.dailyApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(context.Background())

	raw, err := application.Source().LatestSettings(ctx)
	if err != nil {
		return fmt.Errorf("fetch settings: %w", err)
	}
	for _, line := range daily.Format(daily.Convert(raw)) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func (c *cli) dailyCheck(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	application, err := c.dailyApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(context.Background())

	d, err := application.Job().Check(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "changed: %t\n", d.Changed)
	fmt.Fprintf(out, "retrieved at: %s\n", d.RetrievedAt.UTC().Format(time.RFC3339))
	if d.PersistedAt != nil {
		fmt.Fprintf(out, "stored at: %s\n", d.PersistedAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintln(out, "stored at: never")
	}
	fmt.Fprintln(out)
	for _, line := range daily.Format(d.Fetched) {
		fmt.Fprintln(out, line)
	}
	return nil
}
