package guard

import (
	"github.com/jonwraymond/recipeguard/cache"
	"github.com/jonwraymond/recipeguard/errcat"
	"github.com/jonwraymond/recipeguard/ratelimit"
	"github.com/jonwraymond/recipeguard/validate"
)

// Request is one analysis request.
type Request struct {
	// Identity partitions rate limit state. Empty means the identity in
	// the context, then identity.Anonymous.
	Identity string
	Image    []byte
	Prompt   string
}

// Outcome is the result of Analyze. Exactly one of Text and Err is set,
// except that an empty but valid response leaves both empty.
type Outcome struct {
	Text string
	// Note accompanies Warning and Suspicious responses.
	Note string
	Kind validate.Kind

	Source cache.Source

	// RateLimit is the limiter decision, nil when the request failed before
	// reaching the limiter.
	RateLimit ratelimit.Result

	Err *errcat.Categorized
}

// OK reports whether the outcome is displayable.
func (o Outcome) OK() bool { return o.Err == nil }

// Error returns Err as an error, or nil.
func (o Outcome) Error() error {
	if o.Err == nil {
		return nil
	}
	return o.Err
}
