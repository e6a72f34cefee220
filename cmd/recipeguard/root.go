package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/config"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/observe"
)

// Build information, set with -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// errRejected makes the process exit non-zero after the command already
// printed why.
var errRejected = errors.New("rejected")

type options struct {
	configPath string
	store      string
	storePath  string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "recipeguard",
		Short: "Request guard and response cache for recipe-from-photo clients",
		Long: `recipeguard checks prompts and AI responses against the content rules,
inspects the per-identity rate limit windows and the runtime environment,
and derives response cache keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "recipeguard.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.store, "store", "", "Rate limit store driver override: memory, bolt or redis")
	root.PersistentFlags().StringVar(&opts.storePath, "store-path", "", "bbolt database path override")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newCheckPromptCmd(opts),
		newCheckResponseCmd(opts),
		newLimitCmd(opts),
		newEnvCmd(opts),
		newCacheKeyCmd(opts),
		newCategorizeCmd(opts),
		newHealthCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.store != "" {
		cfg.Store.Driver = o.store
	}
	if o.storePath != "" {
		cfg.Store.Path = o.storePath
	}
	if cfg.Store.Driver == kvstore.DriverBolt && cfg.Store.Path == "" {
		cfg.Store.Path = config.DefaultStorePath
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// observer builds the configured observer, sending exporter and log output
// to w.
func observer(ctx context.Context, cfg *config.Config, w io.Writer) (observe.Observer, error) {
	oc := cfg.Observe
	oc.Output = w
	if !oc.Tracing.Enabled && !oc.Metrics.Enabled && !oc.Logging.Enabled {
		return observe.Noop(), nil
	}
	return observe.NewObserver(ctx, oc)
}

// print writes v as indented JSON when --json is set and text otherwise.
func (o *options) print(w io.Writer, v any, text string) error {
	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recipeguard %s (%s)\n", Version, GitCommit)
		},
	}
}
