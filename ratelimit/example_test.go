package ratelimit_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/ratelimit"
)

func ExampleLimiter_CheckAndConsume() {
	l, err := ratelimit.New(kvstore.NewMemoryStore(), ratelimit.Config{PerMinute: 2})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r, _ := l.CheckAndConsume(ctx, "device-42")
		fmt.Println(ratelimit.MatchResult(r,
			func(a ratelimit.Allowed) string { return fmt.Sprintf("allowed, %d left", a.Remaining) },
			func(b ratelimit.Blocked) string { return fmt.Sprintf("blocked: %s", b.Reason) },
		))
	}
	// Output:
	// allowed, 1 left
	// allowed, 0 left
	// blocked: Too many requests
}
