package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonwraymond/recipeguard/pattern"
)

// ResponseConfig configures a ResponseValidator. Nil matchers fall back to
// the built-in tables.
type ResponseConfig struct {
	// MaxResponseLength is measured in runes.
	MaxResponseLength int

	UnsafeCooking *pattern.Matcher
	Inappropriate *pattern.Matcher
	Suspicious    *pattern.Matcher
	FoodSafety    *pattern.Matcher
}

// ResponseConfigFrom builds a ResponseConfig from rule tables.
func ResponseConfigFrom(t pattern.Tables) (ResponseConfig, error) {
	var cfg ResponseConfig
	for c, dst := range map[pattern.Category]**pattern.Matcher{
		pattern.CategoryUnsafeCooking: &cfg.UnsafeCooking,
		pattern.CategoryInappropriate: &cfg.Inappropriate,
		pattern.CategorySuspicious:    &cfg.Suspicious,
		pattern.CategoryFoodSafety:    &cfg.FoodSafety,
	} {
		m, err := t.Matcher(c)
		if err != nil {
			return ResponseConfig{}, err
		}
		*dst = m
	}
	return cfg, nil
}

// ResponseValidator checks AI output before it is shown or cached.
type ResponseValidator struct {
	cfg ResponseConfig
}

// NewResponseValidator creates a validator, applying defaults for zero fields.
func NewResponseValidator(cfg ResponseConfig) *ResponseValidator {
	if cfg.MaxResponseLength <= 0 {
		cfg.MaxResponseLength = DefaultMaxResponseLength
	}
	if cfg.UnsafeCooking == nil {
		cfg.UnsafeCooking = pattern.MustCompile(string(pattern.CategoryUnsafeCooking), pattern.UnsafeCookingRules())
	}
	if cfg.Inappropriate == nil {
		cfg.Inappropriate = pattern.MustCompile(string(pattern.CategoryInappropriate), pattern.InappropriateRules())
	}
	if cfg.Suspicious == nil {
		cfg.Suspicious = pattern.MustCompile(string(pattern.CategorySuspicious), pattern.SuspiciousRules())
	}
	if cfg.FoodSafety == nil {
		cfg.FoodSafety = pattern.MustCompile(string(pattern.CategoryFoodSafety), pattern.FoodSafetyRules())
	}
	return &ResponseValidator{cfg: cfg}
}

// Validate classifies a response. The first check that fires decides:
// length, unsafe cooking, inappropriate content, suspicious content, food
// safety language. Anything else is valid.
func (v *ResponseValidator) Validate(text string) ResponseResult {
	if strings.TrimSpace(text) == "" {
		return ResponseValid{Text: ""}
	}
	if n := utf8.RuneCountInString(text); n > v.cfg.MaxResponseLength {
		return ResponseInvalid{
			Reason: "too long",
			Detail: fmt.Sprintf("response is %d characters, limit %d", n, v.cfg.MaxResponseLength),
		}
	}
	if hit, ok := v.cfg.UnsafeCooking.First(text); ok {
		return ResponseUnsafe{Reason: hit.Message, Note: hit.Detail, RuleID: hit.RuleID}
	}
	if hit, ok := v.cfg.Inappropriate.First(text); ok {
		return ResponseInvalid{Reason: ReasonInappropriate, Detail: hit.Message}
	}
	if hit, ok := v.cfg.Suspicious.First(text); ok {
		return ResponseSuspicious{Text: text, Reason: hit.Message, Note: SuspiciousNote, RuleID: hit.RuleID}
	}
	if hit, ok := v.cfg.FoodSafety.First(text); ok {
		return ResponseWarning{Text: text, Note: WarningNote, RuleID: hit.RuleID}
	}
	return ResponseValid{Text: text}
}
