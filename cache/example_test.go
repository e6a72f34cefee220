package cache_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/recipeguard/cache"
)

func ExampleLoader() {
	keyer := cache.SHA256Keyer{}
	loader := cache.NewLoader(cache.NewLRU(cache.Config{Capacity: 10}), nil)

	key, _ := keyer.Key([]byte("photo bytes"), "What type of cake is this?")
	generate := func(context.Context) (string, error) { return "Chocolate layer cake", nil }

	first, _ := loader.Load(context.Background(), key, generate)
	second, _ := loader.Load(context.Background(), key, generate)

	fmt.Println(first.Source, second.Source, second.Response)
	fmt.Println(loader.Cache().Stats().HitCount)
	// Output:
	// ai_generated cached Chocolate layer cake
	// 1
}
