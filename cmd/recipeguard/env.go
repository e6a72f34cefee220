package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/envcheck"
)

type envView struct {
	Status   string             `json:"status"`
	Reason   string             `json:"reason,omitempty"`
	Findings []envcheck.Finding `json:"findings"`
}

func newEnvCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Run the runtime environment check",
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
			checker := envcheck.NewChecker(envcheck.OS(),
				envcheck.CheckerConfig{Timeout: cfg.Env.Timeout},
				envcheck.DefaultProbes(cfg.Env.Probes)...)
			res := checker.Check(ctx)

			v := envView{Status: res.Status.String(), Reason: res.Reason, Findings: res.Findings}
			if err := opts.print(cmd.OutOrStdout(), v, res.String()); err != nil {
				return err
			}
			if !res.Secure() {
				return errRejected
			}
			return nil
		},
	}
}
