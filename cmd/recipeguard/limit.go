package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/ratelimit"
)

type limitView struct {
	Identity     string `json:"identity"`
	Allowed      bool   `json:"allowed"`
	Remaining    int    `json:"remaining"`
	ResetSeconds int    `json:"reset_seconds,omitempty"`
	Reason       string `json:"reason,omitempty"`
	RetryAfter   int    `json:"retry_after_seconds,omitempty"`
}

func viewOf(id string, r ratelimit.Result) limitView {
	return ratelimit.MatchResult(r,
		func(a ratelimit.Allowed) limitView {
			return limitView{Identity: id, Allowed: true, Remaining: a.Remaining, ResetSeconds: a.ResetSeconds}
		},
		func(b ratelimit.Blocked) limitView {
			return limitView{Identity: id, Reason: b.Reason, RetryAfter: b.RetryAfterSeconds}
		},
	)
}

func (v limitView) String() string {
	if v.Allowed {
		return fmt.Sprintf("%s: allowed, %d remaining, window resets in %ds", v.Identity, v.Remaining, v.ResetSeconds)
	}
	return fmt.Sprintf("%s: blocked (%s), retry after %ds", v.Identity, v.Reason, v.RetryAfter)
}

func newLimitCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limit",
		Short: "Inspect or change rate limit windows",
	}

	run := func(op func(ctx context.Context, l *ratelimit.Limiter, id string) (ratelimit.Result, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := kvstore.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			obs, err := observer(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = obs.Shutdown(context.Background()) }()

			rl := cfg.RateLimit
			rl.Meter = obs.Meter()
			limiter, err := ratelimit.New(store, rl)
			if err != nil {
				return err
			}
			res, err := op(ctx, limiter, args[0])
			if err != nil {
				return err
			}
			v := viewOf(args[0], res)
			return opts.print(cmd.OutOrStdout(), v, v.String())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status <identity>",
			Short: "Show the window without consuming a request",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, l *ratelimit.Limiter, id string) (ratelimit.Result, error) {
				return l.Status(ctx, id)
			}),
		},
		&cobra.Command{
			Use:   "consume <identity>",
			Short: "Record a request if it is allowed",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, l *ratelimit.Limiter, id string) (ratelimit.Result, error) {
				return l.CheckAndConsume(ctx, id)
			}),
		},
		&cobra.Command{
			Use:   "reset <identity>",
			Short: "Forget every recorded request",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, l *ratelimit.Limiter, id string) (ratelimit.Result, error) {
				if err := l.Reset(ctx, id); err != nil {
					return nil, err
				}
				return l.Status(ctx, id)
			}),
		},
	)
	return cmd
}
