package identity

import (
	"context"
	"strings"

	"github.com/jonwraymond/recipeguard/redact"
)

// Identity is an opaque key for per-client state.
type Identity string

// Anonymous is shared by every client that presents neither a session nor a
// device id.
const Anonymous Identity = "anonymous"

// Method indicates how an Identity was derived.
type Method string

const (
	MethodSession   Method = "session"
	MethodDevice    Method = "device"
	MethodAnonymous Method = "anonymous"
)

const maxIDLength = 128

// DeviceIdentity returns the identity of an unauthenticated device. Empty
// ids map to Anonymous.
func DeviceIdentity(deviceID string) Identity {
	id := clean(deviceID)
	if id == "" {
		return Anonymous
	}
	return Identity(string(MethodDevice) + ":" + id)
}

// SessionIdentity returns the identity of a signed-in subject. Empty
// subjects map to Anonymous.
func SessionIdentity(subject string) Identity {
	id := clean(subject)
	if id == "" {
		return Anonymous
	}
	return Identity(string(MethodSession) + ":" + id)
}

func clean(s string) string {
	return redact.Truncate(strings.ReplaceAll(redact.Sanitize(s), " ", "_"), maxIDLength)
}

// String returns the identity as a string.
func (id Identity) String() string { return string(id) }

// IsZero reports whether the identity is empty.
func (id Identity) IsZero() bool { return id == "" }

// Method reports how the identity was derived.
func (id Identity) Method() Method {
	switch {
	case strings.HasPrefix(string(id), string(MethodSession)+":"):
		return MethodSession
	case strings.HasPrefix(string(id), string(MethodDevice)+":"):
		return MethodDevice
	default:
		return MethodAnonymous
	}
}

type contextKey struct{}

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity carried by ctx, or the empty Identity.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}
