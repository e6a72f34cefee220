// Package redact scrubs secrets and injection-prone characters from free text
// before it is logged or echoed back to a user.
package redact

import (
	"regexp"
	"strings"
	"unicode"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)?bearer\s+[A-Za-z0-9._\-+/=]{8,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token|auth[_-]?token|session[_-]?token)\s*[=:]\s*['"]?[A-Za-z0-9._\-+/=]{6,}['"]?`),
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[=:]\s*['"]?[^\s'"]{4,}['"]?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), // Google API keys, used by the AI backend
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}`), // JWTs
	regexp.MustCompile(`-----BEGIN ([A-Z]+ )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)(redis|rediss|https?)://[^:/\s]+:[^@\s]+@`),
}

// String replaces known secret shapes in s with Placeholder.
func String(s string) string {
	if s == "" {
		return s
	}
	out := s
	for _, re := range sensitivePatterns {
		out = re.ReplaceAllString(out, Placeholder)
	}
	for strings.Contains(out, Placeholder+Placeholder) {
		out = strings.ReplaceAll(out, Placeholder+Placeholder, Placeholder)
	}
	return out
}

// Sanitize removes characters that could enable markup or script injection
// when text is rendered or logged: angle brackets, quotes, control and format
// characters. Whitespace runs (including newlines) collapse to one space and
// the result is trimmed. Sanitize is idempotent.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case r == '<', r == '>', r == '\'', r == '"':
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Safe is String followed by Sanitize and Truncate; use it for any user or
// model supplied text that ends up in a log line or an error message.
func Safe(s string, max int) string {
	return Truncate(Sanitize(String(s)), max)
}
