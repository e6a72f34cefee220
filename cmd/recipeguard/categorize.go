package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/errcat"
)

type categoryView struct {
	Category     string `json:"category"`
	Icon         string `json:"icon"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Suggestion   string `json:"suggestion"`
	Retryable    bool   `json:"retryable"`
	RetryDelayMs int64  `json:"retry_delay_ms,omitempty"`
	UserAction   bool   `json:"requires_user_action"`
	Code         string `json:"error_code"`
}

func newCategorizeCmd(opts *options) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "categorize <error message>",
		Short: "Show how an error message would be presented to a user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			c := errcat.New(errcat.Config{MaxInputLength: cfg.Validation.MaxPromptLength})
			res := c.Categorize(errors.New(strings.Join(args, " ")), input)

			var b strings.Builder
			fmt.Fprintf(&b, "%s %s [%s]\n%s\n%s", res.Icon, res.Title, res.Category, res.Message, res.Suggestion)
			if res.Retryable {
				fmt.Fprintf(&b, "\nretry after %dms", res.RetryDelayMillis())
			}
			v := categoryView{
				Category:     string(res.Category),
				Icon:         res.Icon,
				Title:        res.Title,
				Message:      res.Message,
				Suggestion:   res.Suggestion,
				Retryable:    res.Retryable,
				RetryDelayMs: res.RetryDelayMillis(),
				UserAction:   res.RequiresUserAction,
				Code:         res.ErrorCode,
			}
			return opts.print(cmd.OutOrStdout(), v, b.String())
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "User prompt of the failed request")
	return cmd
}
