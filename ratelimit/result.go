package ratelimit

import (
	"fmt"
	"time"
)

// Block reasons.
const (
	ReasonBurst  = "Too many requests"
	ReasonHourly = "Hourly limit"
)

// Window identifies the limit that blocked a request.
type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
)

// Result is the outcome of an evaluation: Allowed or Blocked.
type Result interface {
	isResult()
}

// Allowed means the request fits both budgets. Remaining counts the requests
// still available after this one; ResetSeconds is how long until the oldest
// request in the minute window stops counting (60 when the window is empty).
type Allowed struct {
	Remaining    int
	ResetSeconds int
}

// Blocked means a budget is exhausted.
type Blocked struct {
	Reason            string
	RetryAfterSeconds int
	Window            Window
}

func (Allowed) isResult() {}
func (Blocked) isResult() {}

// Err returns a *BlockedError wrapping ErrRateLimited.
func (b Blocked) Err() error {
	return &BlockedError{Reason: b.Reason, RetryAfter: time.Duration(b.RetryAfterSeconds) * time.Second}
}

// MatchResult calls the handler for the variant held by r.
func MatchResult[T any](r Result, allowed func(Allowed) T, blocked func(Blocked) T) T {
	switch v := r.(type) {
	case Allowed:
		return allowed(v)
	case Blocked:
		return blocked(v)
	}
	panic(fmt.Sprintf("ratelimit: unexpected result %T", r))
}

// Remaining returns the requests left under r; zero when blocked.
func Remaining(r Result) int {
	return MatchResult(r,
		func(a Allowed) int { return a.Remaining },
		func(Blocked) int { return 0 },
	)
}

// IsAllowed reports whether r is Allowed.
func IsAllowed(r Result) bool {
	_, ok := r.(Allowed)
	return ok
}
