package kvstore

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// Sentinel errors for store operations.
var (
	ErrClosed        = errors.New("kvstore: store is closed")
	ErrInvalidKey    = errors.New("kvstore: key is invalid")
	ErrUnavailable   = errors.New("kvstore: backend unavailable")
	ErrUnknownDriver = errors.New("kvstore: unknown driver")
)

// MaxKeyLength is the maximum allowed length for a key.
const MaxKeyLength = 512

// Store maps string keys to sets of strings.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. A single
// PutSet replaces the whole set atomically; callers needing read-modify-write
// atomicity serialize per key themselves.
// - Context: methods honor cancellation where the backend supports it.
// - Errors: GetSet returns an empty set, not an error, for a missing key.
// Backend failures wrap ErrUnavailable; use after Close returns ErrClosed.
// - Durability: PutSet returns only after the write is durable for the driver.
type Store interface {
	// GetSet returns the members stored under key, in no particular order.
	GetSet(ctx context.Context, key string) ([]string, error)

	// PutSet replaces the set stored under key. An empty set deletes the key.
	PutSet(ctx context.Context, key string, members []string) error

	// Close releases the backend. It is safe to call more than once.
	Close() error
}

// ValidateKey checks that key is usable with every driver.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > MaxKeyLength || strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// dedupe returns the distinct members of in, sorted.
func dedupe(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
