package validate

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/jonwraymond/recipeguard/pattern"
	"github.com/jonwraymond/recipeguard/redact"
)

// Default limits.
const (
	DefaultMaxPromptLength         = 1000
	DefaultMaxResponseLength       = 10000
	DefaultMaxImageBytes     int64 = 10 << 20
)

// InputConfig configures an InputValidator. Nil matchers fall back to the
// built-in tables.
type InputConfig struct {
	// MaxPromptLength is measured in runes.
	MaxPromptLength int
	MaxImageBytes   int64

	Security      *pattern.Matcher
	Inappropriate *pattern.Matcher
}

// InputConfigFrom builds an InputConfig from rule tables.
func InputConfigFrom(t pattern.Tables) (InputConfig, error) {
	sec, err := t.Matcher(pattern.CategorySecurity)
	if err != nil {
		return InputConfig{}, err
	}
	inap, err := t.Matcher(pattern.CategoryInappropriate)
	if err != nil {
		return InputConfig{}, err
	}
	return InputConfig{Security: sec, Inappropriate: inap}, nil
}

// InputValidator checks prompts before they are sent to the AI backend.
type InputValidator struct {
	cfg InputConfig
}

// NewInputValidator creates a validator, applying defaults for zero fields.
func NewInputValidator(cfg InputConfig) *InputValidator {
	if cfg.MaxPromptLength <= 0 {
		cfg.MaxPromptLength = DefaultMaxPromptLength
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.Security == nil {
		cfg.Security = pattern.MustCompile(string(pattern.CategorySecurity), pattern.SecurityRules())
	}
	if cfg.Inappropriate == nil {
		cfg.Inappropriate = pattern.MustCompile(string(pattern.CategoryInappropriate), pattern.InappropriateRules())
	}
	return &InputValidator{cfg: cfg}
}

// MaxPromptLength returns the configured prompt limit in runes.
func (v *InputValidator) MaxPromptLength() int { return v.cfg.MaxPromptLength }

// Validate classifies a prompt. Checks run in order: length, security
// patterns, inappropriate patterns. Patterns are tested against both the raw
// and the sanitized text, so a sanitized result always validates to itself.
func (v *InputValidator) Validate(text string) InputResult {
	if utf8.RuneCountInString(text) > v.cfg.MaxPromptLength {
		return InputInvalid{Reason: ReasonTooLong}
	}

	sanitized := Sanitize(text)
	if hit, ok := firstOf(v.cfg.Security, text, sanitized); ok {
		return InputInvalid{Reason: ReasonUnsafe, RuleID: hit.RuleID}
	}
	if hit, ok := firstOf(v.cfg.Inappropriate, text, sanitized); ok {
		return InputInvalid{Reason: ReasonInappropriate, RuleID: hit.RuleID}
	}
	return InputValid{Sanitized: sanitized}
}

// ValidateImage checks that data is a non-empty PNG, JPEG, GIF or WebP image
// within MaxImageBytes.
func (v *InputValidator) ValidateImage(data []byte) error {
	if len(data) == 0 {
		return ErrImageEmpty
	}
	if int64(len(data)) > v.cfg.MaxImageBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(data), v.cfg.MaxImageBytes)
	}
	switch ct := http.DetectContentType(data); ct {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrImageFormat, ct)
	}
}

// Sanitize strips angle brackets, quotes, control and format characters,
// collapses whitespace and trims. It is idempotent.
func Sanitize(text string) string {
	return redact.Sanitize(text)
}

func firstOf(m *pattern.Matcher, texts ...string) (pattern.Match, bool) {
	for _, t := range texts {
		if hit, ok := m.First(t); ok {
			return hit, true
		}
	}
	return pattern.Match{}, false
}
