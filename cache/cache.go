package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length of Key.String().
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache     = errors.New("cache: cache is nil")
	ErrInvalidKey   = errors.New("cache: key is invalid")
	ErrKeyTooLong   = errors.New("cache: key exceeds max length")
	ErrInvalidImage = errors.New("cache: image is invalid")
	ErrUnknownKeyer = errors.New("cache: unknown keyer")
)

// Source tells the caller where a response came from.
type Source int

const (
	// SourceAIGenerated marks a response produced by the AI backend for this request.
	SourceAIGenerated Source = iota
	// SourceCached marks a response served from the cache.
	SourceCached
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceAIGenerated:
		return "ai_generated"
	case SourceCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Key identifies a cached response. Two requests share an entry only when
// both the image hash and the prompt are equal.
type Key struct {
	ImageHash string
	Prompt    string
}

// String renders the key as recipe:<image hash>:<first 16 hex chars of
// SHA-256(prompt)>.
func (k Key) String() string {
	sum := sha256.Sum256([]byte(k.Prompt))
	return "recipe:" + k.ImageHash + ":" + hex.EncodeToString(sum[:8])
}

// Validate checks that the key can be stored.
func (k Key) Validate() error {
	if strings.TrimSpace(k.ImageHash) == "" || strings.ContainsAny(k.ImageHash, "\n\r") {
		return ErrInvalidKey
	}
	if len(k.String()) > MaxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}

// Entry is an immutable cached response.
type Entry struct {
	Response  string
	CreatedAt time.Time
	Source    Source
}

// Stats is a snapshot of cache counters. Counters only grow until Purge.
type Stats struct {
	TotalEntries    int
	HitCount        uint64
	MissCount       uint64
	EvictionCount   uint64
	ExpirationCount uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.HitCount + s.MissCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}
