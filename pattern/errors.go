package pattern

import "errors"

// Sentinel errors for rule compilation and loading.
var (
	ErrInvalidPattern  = errors.New("pattern: invalid pattern")
	ErrUnknownCategory = errors.New("pattern: unknown category")
	ErrDuplicateRule   = errors.New("pattern: duplicate rule id")
)
