// Package observe provides logging, tracing and metrics for the request
// pipeline.
//
// Every pipeline stage (input validation, rate limiting, environment check,
// cache lookup, generation, response validation) runs through Middleware,
// which opens a span named recipeguard.<stage>, records stage counters and
// a duration histogram, and writes one structured log line. Log fields that
// may carry user content or credentials are redacted.
package observe
