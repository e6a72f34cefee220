// Package ratelimit enforces per-identity request budgets over sliding
// windows: a short burst limit over the last minute and a longer hourly
// limit. Each identity's accepted request times are kept as a set of epoch
// millisecond strings in a kvstore.Store, so budgets survive restarts.
//
// CheckAndConsume records a request when it is allowed; Status answers the
// same question without recording anything. Both prune entries older than
// the retention period (24 hours by default).
//
// Evaluations for the same identity are serialized by one of a fixed set of
// mutexes chosen by hashing the identity, so unrelated identities rarely
// contend.
package ratelimit
