package main

import (
	"github.com/spf13/cobra"
)

func showCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current portfolio valuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.dash.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			renderSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}
