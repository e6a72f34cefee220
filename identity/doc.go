// Package identity derives the request identity that partitions rate-limit
// state.
//
// An Identity is an opaque string. Signed-in clients present a session JWT
// that SessionVerifier maps to "session:<subject>"; other clients are keyed
// by device as "device:<id>". Resolver tries each in turn and falls back to
// Anonymous.
package identity
