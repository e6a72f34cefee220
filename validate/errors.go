package validate

import (
	"errors"
	"fmt"
)

// Sentinel errors. Invalid results convert to errors wrapping one of these so
// that the error categorizer can route them.
var (
	ErrInvalidInput  = errors.New("validate: invalid input")
	ErrContentPolicy = errors.New("validate: content policy violation")
)

// Image errors all wrap ErrInvalidInput.
var (
	ErrImageEmpty    = fmt.Errorf("%w: image is empty", ErrInvalidInput)
	ErrImageTooLarge = fmt.Errorf("%w: image exceeds max size", ErrInvalidInput)
	ErrImageFormat   = fmt.Errorf("%w: unsupported image format", ErrInvalidInput)
)
