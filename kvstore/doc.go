// Package kvstore persists small string sets by key.
//
// It backs the rate limiter's per-identity timestamp windows, which must
// survive process restarts. Three drivers are provided: an in-memory map for
// tests and ephemeral sessions, a single-file bbolt database for a device or
// a lone process, and Redis for a fleet of processes sharing one budget.
package kvstore
