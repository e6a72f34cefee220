// Package errcat turns failures from any stage of a recipe request into a
// structured, user-displayable value.
//
// Categorizer is the single funnel for errors: network failures, insecure
// environments, rate limits, rejected input, content policy hits, backend
// failures and local system faults each map to a Category with a title, a
// message, a suggestion and retry guidance. Classification prefers typed
// errors (errors.Is / errors.As) and falls back to message inspection for
// errors from collaborators that only carry text.
//
// Messages never echo raw user input. Details derived from the error text
// pass through the redact package first.
package errcat
