// Package validate classifies user prompts before they reach the AI backend
// and AI responses before they reach the user.
//
// Results are closed sum types. InputResult is InputValid or InputInvalid;
// ResponseResult is one of ResponseValid, ResponseWarning, ResponseSuspicious,
// ResponseUnsafe or ResponseInvalid. The variants implement an unexported
// marker method so no other package can add one, and MatchInput and
// MatchResponse require a handler for every variant.
//
// Both validators are pure functions of their input and configuration and
// are safe for concurrent use.
package validate
