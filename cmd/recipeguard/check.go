package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/config"
	"github.com/jonwraymond/recipeguard/pattern"
	"github.com/jonwraymond/recipeguard/validate"
)

type verdict struct {
	Kind   string `json:"kind"`
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
	Rule   string `json:"rule,omitempty"`
}

func (v verdict) String() string {
	var b strings.Builder
	b.WriteString(v.Kind)
	if v.Reason != "" {
		fmt.Fprintf(&b, ": %s", v.Reason)
	}
	if v.Rule != "" {
		fmt.Fprintf(&b, " [%s]", v.Rule)
	}
	if v.Text != "" {
		fmt.Fprintf(&b, "\n%s", v.Text)
	}
	if v.Note != "" {
		fmt.Fprintf(&b, "\nnote: %s", v.Note)
	}
	return b.String()
}

func newCheckPromptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-prompt <text>",
		Short: "Validate and sanitize a user prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			tables, err := pattern.LoadTables(cfg.Validation.RulesFile)
			if err != nil {
				return err
			}
			ic, err := validate.InputConfigFrom(tables)
			if err != nil {
				return err
			}
			ic.MaxPromptLength = cfg.Validation.MaxPromptLength
			v := validate.NewInputValidator(ic)

			out := validate.MatchInput(v.Validate(args[0]),
				func(r validate.InputValid) verdict {
					return verdict{Kind: r.Kind().String(), Text: r.Sanitized}
				},
				func(r validate.InputInvalid) verdict {
					return verdict{Kind: r.Kind().String(), Reason: r.Reason, Rule: r.RuleID}
				},
			)
			if err := opts.print(cmd.OutOrStdout(), out, out.String()); err != nil {
				return err
			}
			if out.Kind != validate.KindValid.String() {
				return errRejected
			}
			return nil
		},
	}
}

func newCheckResponseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-response [text]",
		Short: "Classify an AI response; reads stdin when text is omitted or -",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			text, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			v, err := responseValidator(cfg)
			if err != nil {
				return err
			}

			out := validate.MatchResponse(v.Validate(text),
				func(r validate.ResponseValid) verdict { return verdict{Kind: r.Kind().String()} },
				func(r validate.ResponseWarning) verdict {
					return verdict{Kind: r.Kind().String(), Note: r.Note, Rule: r.RuleID}
				},
				func(r validate.ResponseSuspicious) verdict {
					return verdict{Kind: r.Kind().String(), Reason: r.Reason, Note: r.Note, Rule: r.RuleID}
				},
				func(r validate.ResponseUnsafe) verdict {
					return verdict{Kind: r.Kind().String(), Reason: r.Reason, Note: r.Note, Rule: r.RuleID}
				},
				func(r validate.ResponseInvalid) verdict {
					return verdict{Kind: r.Kind().String(), Reason: r.Reason, Note: r.Detail}
				},
			)
			if err := opts.print(cmd.OutOrStdout(), out, out.String()); err != nil {
				return err
			}
			if out.Kind == validate.KindUnsafe.String() || out.Kind == validate.KindInvalid.String() {
				return errRejected
			}
			return nil
		},
	}
}

func responseValidator(cfg *config.Config) (*validate.ResponseValidator, error) {
	tables, err := pattern.LoadTables(cfg.Validation.RulesFile)
	if err != nil {
		return nil, err
	}
	rc, err := validate.ResponseConfigFrom(tables)
	if err != nil {
		return nil, err
	}
	rc.MaxResponseLength = cfg.Validation.MaxResponseLength
	return validate.NewResponseValidator(rc), nil
}

func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
