package validate

import "fmt"

// Kind enumerates the variants of InputResult and ResponseResult.
type Kind int

const (
	KindValid Kind = iota
	KindWarning
	KindSuspicious
	KindUnsafe
	KindInvalid
)

// String returns the lower case variant name.
func (k Kind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindWarning:
		return "warning"
	case KindSuspicious:
		return "suspicious"
	case KindUnsafe:
		return "unsafe"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Rejection reasons reported by InputInvalid.
const (
	ReasonTooLong       = "input too long"
	ReasonUnsafe        = "unsafe content"
	ReasonInappropriate = "inappropriate content"
)

// Notes attached to displayable responses.
const (
	WarningNote    = "Please verify information with reliable sources"
	SuspiciousNote = "This response contains unusual instructions. Please verify before following them."
)

// InputResult is the outcome of InputValidator.Validate.
type InputResult interface {
	Kind() Kind
	isInputResult()
}

// InputValid carries the sanitized prompt.
type InputValid struct {
	Sanitized string
}

// InputInvalid reports why a prompt was rejected.
type InputInvalid struct {
	Reason string
	// RuleID names the pattern rule that fired, empty for length failures.
	RuleID string
}

func (InputValid) Kind() Kind   { return KindValid }
func (InputInvalid) Kind() Kind { return KindInvalid }

func (InputValid) isInputResult()   {}
func (InputInvalid) isInputResult() {}

// Err converts the rejection into an error. Length failures wrap
// ErrInvalidInput; pattern hits are a *PolicyError wrapping ErrContentPolicy.
func (r InputInvalid) Err() error {
	if r.Reason == ReasonTooLong {
		return fmt.Errorf("%w: %s", ErrInvalidInput, r.Reason)
	}
	return &PolicyError{Stage: "input", Reason: r.Reason, RuleID: r.RuleID}
}

// MatchInput calls the handler for the variant held by r.
func MatchInput[T any](r InputResult, valid func(InputValid) T, invalid func(InputInvalid) T) T {
	switch v := r.(type) {
	case InputValid:
		return valid(v)
	case InputInvalid:
		return invalid(v)
	}
	panic(fmt.Sprintf("validate: unexpected input result %T", r))
}

// ResponseResult is the outcome of ResponseValidator.Validate.
type ResponseResult interface {
	Kind() Kind
	isResponseResult()
}

// ResponseValid is safe to display as is.
type ResponseValid struct {
	Text string
}

// ResponseWarning is displayable with a food-safety note.
type ResponseWarning struct {
	Text   string
	Note   string
	RuleID string
}

// ResponseSuspicious is displayable but unusual; Note asks the user to verify.
type ResponseSuspicious struct {
	Text   string
	Reason string
	Note   string
	RuleID string
}

// ResponseUnsafe must not be shown. Note is the safety rationale.
type ResponseUnsafe struct {
	Reason string
	Note   string
	RuleID string
}

// ResponseInvalid must not be shown.
type ResponseInvalid struct {
	Reason string
	Detail string
}

func (ResponseValid) Kind() Kind      { return KindValid }
func (ResponseWarning) Kind() Kind    { return KindWarning }
func (ResponseSuspicious) Kind() Kind { return KindSuspicious }
func (ResponseUnsafe) Kind() Kind     { return KindUnsafe }
func (ResponseInvalid) Kind() Kind    { return KindInvalid }

func (ResponseValid) isResponseResult()      {}
func (ResponseWarning) isResponseResult()    {}
func (ResponseSuspicious) isResponseResult() {}
func (ResponseUnsafe) isResponseResult()     {}
func (ResponseInvalid) isResponseResult()    {}

// Err returns a *PolicyError describing the unsafe response.
func (r ResponseUnsafe) Err() error {
	return &PolicyError{Stage: "response", Reason: r.Reason, Note: r.Note, RuleID: r.RuleID}
}

// Err returns a *PolicyError describing the invalid response.
func (r ResponseInvalid) Err() error {
	return &PolicyError{Stage: "response", Reason: r.Reason, Note: r.Detail}
}

// MatchResponse calls the handler for the variant held by r.
func MatchResponse[T any](
	r ResponseResult,
	valid func(ResponseValid) T,
	warning func(ResponseWarning) T,
	suspicious func(ResponseSuspicious) T,
	unsafe func(ResponseUnsafe) T,
	invalid func(ResponseInvalid) T,
) T {
	switch v := r.(type) {
	case ResponseValid:
		return valid(v)
	case ResponseWarning:
		return warning(v)
	case ResponseSuspicious:
		return suspicious(v)
	case ResponseUnsafe:
		return unsafe(v)
	case ResponseInvalid:
		return invalid(v)
	}
	panic(fmt.Sprintf("validate: unexpected response result %T", r))
}

// Displayable is the user visible part of a Valid, Warning or Suspicious
// response. Note is empty for Valid.
type Displayable struct {
	Text string
	Note string
}

// Display returns what the user may see for r, or the rejection error.
func Display(r ResponseResult) (Displayable, error) {
	type out struct {
		d   Displayable
		err error
	}
	res := MatchResponse(r,
		func(v ResponseValid) out { return out{d: Displayable{Text: v.Text}} },
		func(v ResponseWarning) out { return out{d: Displayable{Text: v.Text, Note: v.Note}} },
		func(v ResponseSuspicious) out { return out{d: Displayable{Text: v.Text, Note: v.Note}} },
		func(v ResponseUnsafe) out { return out{err: v.Err()} },
		func(v ResponseInvalid) out { return out{err: v.Err()} },
	)
	return res.d, res.err
}

// PolicyError is a rejected prompt or response. It wraps ErrContentPolicy.
type PolicyError struct {
	Stage  string // "input" or "response"
	Reason string
	Note   string
	RuleID string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrContentPolicy.Error(), e.Stage, e.Reason)
}

func (e *PolicyError) Unwrap() error { return ErrContentPolicy }
