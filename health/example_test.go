package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/health"
	"github.com/jonwraymond/recipeguard/kvstore"
)

func ExampleRun() {
	store := kvstore.NewMemoryStore()
	defer store.Close()

	report := health.Run(context.Background(), health.Options{},
		health.StoreChecker{Store: store},
		health.CacheChecker{Cache: cache.NewLRU(cache.Config{})},
	)
	fmt.Println(report.Status)
	for _, c := range report.Checks {
		fmt.Printf("%s: %s (%s)\n", c.Name, c.Status, c.Message)
	}
	// Output:
	// healthy
	// store: healthy (store reachable)
	// cache: healthy (0 of 50 entries)
}
