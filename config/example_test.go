package config_test

import (
	"fmt"

	"github.com/jonwraymond/recipeguard/config"
)

func ExampleParseSecretRef() {
	provider, ref, ok := config.ParseSecretRef("secretref:env:RECIPEGUARD_JWT_KEY")
	fmt.Println(provider, ref, ok)
	// Output: env RECIPEGUARD_JWT_KEY true
}

func ExampleDefault() {
	cfg := config.Default()
	fmt.Println(cfg.Store.Driver, cfg.RateLimit.PerMinute, cfg.RateLimit.PerHour, cfg.Cache.Capacity)
	// Output: bolt 2 20 50
}
