package errcat

import (
	"fmt"
	"time"
)

// Category is the class of a failure.
type Category string

const (
	CategorySecurity      Category = "security"
	CategoryNetwork       Category = "network"
	CategoryRateLimit     Category = "rate_limit"
	CategoryInput         Category = "input"
	CategoryContentPolicy Category = "content_policy"
	CategoryServer        Category = "server"
	CategorySystem        Category = "system"
	CategoryUnknown       Category = "unknown"
)

// Icon returns the glyph a UI shows next to errors of this category.
func (c Category) Icon() string {
	switch c {
	case CategoryNetwork:
		return "📶"
	case CategorySecurity:
		return "🔑"
	case CategoryRateLimit:
		return "⏰"
	case CategoryContentPolicy:
		return "🚫"
	case CategoryInput:
		return "✏️"
	case CategoryServer:
		return "☁️"
	case CategorySystem:
		return "⚙️"
	default:
		return "❓"
	}
}

// Categorized is a classified failure.
//
// Retryable categories (network, rate limit, server) carry a RetryDelay.
// Security and system failures require user action and are never retried
// automatically.
type Categorized struct {
	Category   Category
	Title      string
	Message    string
	Suggestion string

	Retryable          bool
	RetryDelay         time.Duration
	RequiresUserAction bool
	UserAttributable   bool

	// ErrorCode is a stable machine readable code. For unknown errors it is
	// the Go type of the cause.
	ErrorCode string
	Icon      string

	// Detail is the redacted cause text, suitable for logs.
	Detail string
	Cause  error
}

func (c *Categorized) Error() string {
	if c.Cause == nil {
		return fmt.Sprintf("errcat: %s: %s", c.Category, c.Message)
	}
	return fmt.Sprintf("errcat: %s: %v", c.Category, c.Cause)
}

func (c *Categorized) Unwrap() error { return c.Cause }

// RetryDelayMillis returns RetryDelay in milliseconds, or 0 when the error is
// not retryable.
func (c *Categorized) RetryDelayMillis() int64 {
	if c == nil || !c.Retryable {
		return 0
	}
	return c.RetryDelay.Milliseconds()
}

// Is reports whether target is a *Categorized of the same category, so
// callers can write errors.Is(err, &errcat.Categorized{Category: errcat.CategoryNetwork}).
func (c *Categorized) Is(target error) bool {
	t, ok := target.(*Categorized)
	return ok && t.Cause == nil && t.Category == c.Category
}
