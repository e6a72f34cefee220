package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/validate"
)

type keyView struct {
	Key       string `json:"key"`
	ImageHash string `json:"image_hash"`
	Keyer     string `json:"keyer"`
}

func newCacheKeyCmd(opts *options) *cobra.Command {
	var keyer string
	cmd := &cobra.Command{
		Use:   "cache-key <image> <prompt>",
		Short: "Print the response cache key for an image file and prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if keyer == "" {
				keyer = cfg.Cache.Keyer
			}
			k, err := cache.NewKeyer(keyer)
			if err != nil {
				return err
			}
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			key, err := k.Key(image, validate.Sanitize(args[1]))
			if err != nil {
				return err
			}
			if keyer == "" {
				keyer = cache.KeyerSHA256
			}
			v := keyView{Key: key.String(), ImageHash: key.ImageHash, Keyer: keyer}
			return opts.print(cmd.OutOrStdout(), v, v.Key)
		},
	}
	cmd.Flags().StringVar(&keyer, "keyer", "", "Image keyer: sha256 or perceptual (default from config)")
	return cmd
}
