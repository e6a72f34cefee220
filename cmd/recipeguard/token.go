package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/identity"
)

type tokenView struct {
	Token    string `json:"token,omitempty"`
	Identity string `json:"identity,omitempty"`
	Method   string `json:"method,omitempty"`
}

func sessionVerifier(cmd *cobra.Command, opts *options) (*identity.SessionVerifier, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	r, err := cfg.IdentityResolver(ctx, nil)
	if err != nil {
		return nil, err
	}
	if r.Sessions == nil {
		return nil, errors.New("session.secret is not configured")
	}
	return r.Sessions, nil
}

func newTokenCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or verify session tokens",
	}

	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue <subject>",
		Short: "Issue a session token for subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := sessionVerifier(cmd, opts)
			if err != nil {
				return err
			}
			token, err := v.Issue(args[0], ttl)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), tokenView{Token: token}, token)
		},
	}
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token and print its identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := sessionVerifier(cmd, opts)
			if err != nil {
				return err
			}
			id, err := v.Verify(args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(),
				tokenView{Identity: id.String(), Method: string(id.Method())}, id.String())
		},
	}

	cmd.AddCommand(issue, verify)
	return cmd
}
