// Package guard runs one recipe analysis request through the protection
// pipeline.
//
// The order is fixed: image check, prompt validation, rate limit,
// environment check, cache lookup, AI generation on a miss, response
// validation. Every stage runs inside an observe.Middleware span and every
// failure is converted by errcat into a *errcat.Categorized carried in
// Outcome.Err. Analyze never returns a bare error.
//
// Unsafe or invalid responses are never cached. Concurrent misses for the
// same image and prompt share one generation.
package guard
