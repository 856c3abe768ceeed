package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/trogers1052/investment-tracker/internal/config"
	"github.com/trogers1052/investment-tracker/internal/logger"
)

// globals holds what every subcommand needs, filled in before it runs
type globals struct {
	cfg *config.Config
	log zerolog.Logger
}

// Execute builds the command tree and runs it
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Personal investment tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
			return nil
		},
	}

	root.AddCommand(serveCmd(g), showCmd(g), addCmd(g))
	return root
}
