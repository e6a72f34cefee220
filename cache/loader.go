package cache

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

// GenerateFunc produces a response on a cache miss.
type GenerateFunc func(ctx context.Context) (string, error)

// AcceptFunc decides whether a generated response may be stored. A nil
// AcceptFunc stores everything.
type AcceptFunc func(response string) bool

// Loader serves responses from an LRU and falls back to a generator on a
// miss. Concurrent misses for the same key share one generation.
// Errors are never cached.
type Loader struct {
	cache  *LRU
	accept AcceptFunc
	group  singleflight.Group
}

// NewLoader creates a loader over c. accept filters what is stored.
func NewLoader(c *LRU, accept AcceptFunc) *Loader {
	return &Loader{cache: c, accept: accept}
}

// Cache returns the underlying LRU.
func (l *Loader) Cache() *LRU { return l.cache }

// Load returns the cached entry for key, or calls generate and stores its
// result. The entry reports SourceCached on a hit and SourceAIGenerated
// otherwise, including for callers that joined an in-flight generation.
// generate runs without the caller's cancellation, so it must bound its own
// work; a caller whose ctx ends first gets ctx.Err() while the generation
// carries on for the others.
func (l *Loader) Load(ctx context.Context, key Key, generate GenerateFunc) (Entry, error) {
	if l == nil || l.cache == nil {
		return Entry{}, ErrNilCache
	}
	if generate == nil {
		return Entry{}, errors.New("cache: generate func is nil")
	}
	if err := key.Validate(); err != nil {
		return Entry{}, err
	}
	if e, ok := l.cache.Get(key); ok {
		return e, nil
	}

	// The shared generation outlives any single caller; each caller stops
	// waiting when its own ctx is done.
	flight := l.group.DoChan(key.String(), func() (any, error) {
		resp, err := generate(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		e := Entry{Response: resp, CreatedAt: l.cache.cfg.Now(), Source: SourceAIGenerated}
		if l.accept == nil || l.accept(resp) {
			l.cache.Put(key, e)
		}
		return e, nil
	})
	select {
	case res := <-flight:
		if res.Err != nil {
			return Entry{}, res.Err
		}
		return res.Val.(Entry), nil
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}
