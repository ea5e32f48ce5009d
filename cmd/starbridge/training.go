package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/starbridge/internal/app"
	"github.com/MrWong99/starbridge/internal/settings"
)

const lookupTimeout = 30 * time.Second

func (c *cli) newTrainingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "training <name>",
		Short: "Look up trainings by name",
		Long: `Look up every training whose name contains <name> and print its
stats. Several words are joined with spaces.

Example:
  starbridge training gym drill`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.training,
	}
}

func (c *cli) training(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	application, err := app.New(ctx, c.cfg,
		app.WithoutDiscord(),
		app.WithBackend(settings.NewMemStore()),
	)
	if err != nil {
		return err
	}
	defer application.Shutdown(context.Background())

	svc := application.Training()
	res, err := svc.Lookup(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, line := range svc.Text(res) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
