package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrWong99/starbridge/internal/config"
)

// cli carries state shared by all subcommands.
type cli struct {
	configPath string
	cfg        *config.Config
	level      *slog.LevelVar
}

func newRootCmd() *cobra.Command {
	c := &cli{level: new(slog.LevelVar)}

	root := &cobra.Command{
		Use:   "starbridge",
		Short: "Pixel Starships companion bot",
		Long: `starbridge answers training lookups and posts the daily shop, sale and
reward rotation of Pixel Starships to registered Discord channels.

Configuration is read from the YAML file given with --config and can be
overridden with STARBRIDGE_* environment variables (or a .env file).`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to the YAML configuration file (default: environment only)")

	root.AddCommand(
		c.newRunCmd(),
		c.newTrainingCmd(),
		c.newDailyCmd(),
	)
	return root
}

// setup loads the configuration and installs the default logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.level.Set(cfg.Server.LogLevel.Slog())
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: c.level})))
	return nil
}
