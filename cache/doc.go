// Package cache provides the bounded recipe response cache.
//
// Responses are keyed by the photo and the prompt that produced them. A
// Keyer derives the image half of the Key: SHA256Keyer hashes the exact
// bytes, PerceptualKeyer hashes what the picture looks like so that a
// re-encoded or resized photo of the same dish hits the same entry.
//
// LRU is a fixed-capacity, least-recently-used cache of validated responses
// with hit, miss and eviction counters. Loader puts it in front of a
// generator: hits are served from memory, concurrent misses for one key
// share a single generation, and failures are never cached.
package cache
