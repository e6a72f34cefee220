package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/guard"
	"github.com/jonwraymond/recipeguard/health"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the store, environment, cache and memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			obs, err := observer(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = obs.Shutdown(context.Background()) }()

			g, err := guard.FromConfig(ctx, cfg, obs)
			if err != nil {
				return err
			}
			defer g.Close()

			report := g.Health(ctx)
			var b strings.Builder
			b.WriteString(report.Status.String())
			for _, c := range report.Checks {
				fmt.Fprintf(&b, "\n  %-12s %-9s %s", c.Name, c.Status, c.Message)
			}
			if err := opts.print(cmd.OutOrStdout(), report, b.String()); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errRejected
			}
			return nil
		},
	}
}
