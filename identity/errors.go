package identity

import "errors"

// Sentinel errors for identity resolution.
var (
	ErrMissingToken = errors.New("identity: missing token")
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrTokenExpired = errors.New("identity: token expired")
	ErrMissingClaim = errors.New("identity: token has no identity claim")
	ErrNoSecret     = errors.New("identity: signing secret is empty")
)
