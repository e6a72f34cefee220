package errcat

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/jonwraymond/recipeguard/envcheck"
	"github.com/jonwraymond/recipeguard/kvstore"
	"github.com/jonwraymond/recipeguard/ratelimit"
	"github.com/jonwraymond/recipeguard/redact"
	"github.com/jonwraymond/recipeguard/validate"
)

// Default retry delays and limits.
const (
	DefaultNetworkDelay   = 5 * time.Second
	DefaultRateLimitDelay = 60 * time.Second
	DefaultServerDelay    = 10 * time.Second
	DefaultMaxInputLength = validate.DefaultMaxPromptLength
	DefaultMaxDetail      = 256
)

// Config configures a Categorizer.
type Config struct {
	NetworkDelay   time.Duration
	RateLimitDelay time.Duration
	ServerDelay    time.Duration

	// MaxInputLength is the prompt limit in runes. Input errors for longer
	// input say "too long".
	MaxInputLength int

	// MaxDetail bounds Categorized.Detail.
	MaxDetail int
}

func (c *Config) applyDefaults() {
	if c.NetworkDelay <= 0 {
		c.NetworkDelay = DefaultNetworkDelay
	}
	if c.RateLimitDelay <= 0 {
		c.RateLimitDelay = DefaultRateLimitDelay
	}
	if c.ServerDelay <= 0 {
		c.ServerDelay = DefaultServerDelay
	}
	if c.MaxInputLength <= 0 {
		c.MaxInputLength = DefaultMaxInputLength
	}
	if c.MaxDetail <= 0 {
		c.MaxDetail = DefaultMaxDetail
	}
}

// Categorizer classifies errors. It is stateless and safe for concurrent use.
type Categorizer struct {
	cfg Config
}

// New creates a Categorizer, applying defaults for zero fields.
func New(cfg Config) *Categorizer {
	cfg.applyDefaults()
	return &Categorizer{cfg: cfg}
}

// Categorize classifies err. userInput is the prompt of the failed request,
// if any; it only influences the wording of input errors and is never
// copied into the result. A nil err returns nil. An err that is already a
// *Categorized is returned as is.
//
// Precedence: security, network, rate limit, input, content policy, server,
// system, unknown.
func (c *Categorizer) Categorize(err error, userInput string) *Categorized {
	if err == nil {
		return nil
	}
	var done *Categorized
	if errors.As(err, &done) {
		return done
	}

	text := strings.ToLower(err.Error())
	var out *Categorized
	switch {
	case isSecurity(err, text):
		out = c.security(err)
	case isNetwork(err, text):
		out = c.network(err)
	case isRateLimit(err, text):
		out = c.rateLimit(err)
	case isInput(err, text):
		out = c.input(err, text, userInput)
	case isContentPolicy(err, text):
		out = c.contentPolicy(err)
	case isServer(err, text):
		out = c.server(err)
	case isSystem(err, text):
		out = c.system(err)
	default:
		out = c.unknown(err)
	}
	out.Cause = err
	out.Icon = out.Category.Icon()
	out.Detail = redact.Safe(err.Error(), c.cfg.MaxDetail)
	return out
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func isSecurity(err error, text string) bool {
	var (
		verify   *tls.CertificateVerificationError
		record   tls.RecordHeaderError
		unknown  x509.UnknownAuthorityError
		hostname x509.HostnameError
		invalid  x509.CertificateInvalidError
	)
	switch {
	case errors.Is(err, envcheck.ErrInsecureEnvironment),
		errors.As(err, &verify),
		errors.As(err, &record),
		errors.As(err, &unknown),
		errors.As(err, &hostname),
		errors.As(err, &invalid):
		return true
	}
	return containsAny(text, "ssl", "tls handshake", "certificate", "security")
}

func isNetwork(err error, text string) bool {
	var (
		dns *net.DNSError
		op  *net.OpError
		ne  net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.As(err, &dns),
		errors.As(err, &op):
		return true
	case errors.As(err, &ne) && ne.Timeout():
		return true
	}
	return containsAny(text, "network", "connection", "unknown host", "no such host", "timeout", "timed out")
}

func isRateLimit(err error, text string) bool {
	var se *ServerError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return errors.Is(err, ratelimit.ErrRateLimited) ||
		containsAny(text, "rate limit", "too many requests", "quota")
}

func isInput(err error, text string) bool {
	return errors.Is(err, validate.ErrInvalidInput) ||
		containsAny(text, "invalid input", "validation failed")
}

func isContentPolicy(err error, text string) bool {
	return errors.Is(err, validate.ErrContentPolicy) || strings.Contains(text, "content policy")
}

func isServer(err error, text string) bool {
	var se *ServerError
	if errors.As(err, &se) && se.StatusCode >= 500 {
		return true
	}
	return containsAny(text, "server error", "internal error", "service unavailable", "bad gateway", "503", "502")
}

func isSystem(err error, text string) bool {
	return errors.Is(err, kvstore.ErrUnavailable) ||
		errors.Is(err, kvstore.ErrClosed) ||
		containsAny(text, "illegal state", "system resource", "out of memory", "no space left")
}

func (c *Categorizer) security(error) *Categorized {
	return &Categorized{
		Category:           CategorySecurity,
		Title:              "Security check failed",
		Message:            "A secure connection to the recipe service could not be established on this device.",
		Suggestion:         "Make sure the app is up to date and you are not on a modified or emulated device.",
		RequiresUserAction: true,
		ErrorCode:          "SECURITY_ERROR",
	}
}

func (c *Categorizer) network(error) *Categorized {
	return &Categorized{
		Category:   CategoryNetwork,
		Title:      "Connection problem",
		Message:    "We couldn't reach the recipe service.",
		Suggestion: "Check your internet connection and try again.",
		Retryable:  true,
		RetryDelay: c.cfg.NetworkDelay,
		ErrorCode:  "NETWORK_ERROR",
	}
}

func (c *Categorizer) rateLimit(err error) *Categorized {
	delay := c.cfg.RateLimitDelay
	var blocked *ratelimit.BlockedError
	if errors.As(err, &blocked) && blocked.RetryAfter > 0 {
		delay = blocked.RetryAfter
	}
	return &Categorized{
		Category:   CategoryRateLimit,
		Title:      "Slow down",
		Message:    "You've made too many requests.",
		Suggestion: fmt.Sprintf("Please wait %s before trying again.", humanDelay(delay)),
		Retryable:  true,
		RetryDelay: delay,
		ErrorCode:  "RATE_LIMITED",
	}
}

func (c *Categorizer) input(err error, text, userInput string) *Categorized {
	out := &Categorized{
		Category:         CategoryInput,
		Title:            "Check your question",
		Message:          "Your question couldn't be processed.",
		Suggestion:       "Rephrase your question about the dish and try again.",
		UserAttributable: true,
		ErrorCode:        "INVALID_INPUT",
	}
	if utf8.RuneCountInString(userInput) > c.cfg.MaxInputLength || strings.Contains(text, "too long") {
		out.Message = fmt.Sprintf("Your question is too long. Keep it under %d characters.", c.cfg.MaxInputLength)
		out.Suggestion = "Shorten your question and try again."
		out.ErrorCode = "INPUT_TOO_LONG"
	}
	switch {
	case errors.Is(err, validate.ErrImageEmpty), errors.Is(err, validate.ErrImageFormat):
		out.Title = "Check your photo"
		out.Message = "The photo couldn't be read."
		out.Suggestion = "Take a new photo or choose a PNG, JPEG, GIF or WebP image."
		out.ErrorCode = "INVALID_IMAGE"
	case errors.Is(err, validate.ErrImageTooLarge):
		out.Title = "Check your photo"
		out.Message = "The photo is too large."
		out.Suggestion = "Choose a smaller photo and try again."
		out.ErrorCode = "IMAGE_TOO_LARGE"
	}
	return out
}

func (c *Categorizer) contentPolicy(err error) *Categorized {
	out := &Categorized{
		Category:         CategoryContentPolicy,
		Title:            "Request not allowed",
		Message:          "This request can't be answered because it goes against our content policy.",
		Suggestion:       "Ask about the food in your photo instead.",
		UserAttributable: true,
		ErrorCode:        "CONTENT_POLICY",
	}
	var pe *validate.PolicyError
	if errors.As(err, &pe) && pe.Stage == "response" {
		out.Title = "Response withheld"
		out.Message = "The generated recipe was withheld because it failed a food safety check."
		out.UserAttributable = false
		out.ErrorCode = "UNSAFE_RESPONSE"
		if pe.Note != "" {
			out.Suggestion = pe.Note
		}
	}
	return out
}

func (c *Categorizer) server(error) *Categorized {
	return &Categorized{
		Category:   CategoryServer,
		Title:      "Service unavailable",
		Message:    "The recipe service is having trouble right now.",
		Suggestion: "Please try again in a little while.",
		Retryable:  true,
		RetryDelay: c.cfg.ServerDelay,
		ErrorCode:  "SERVER_ERROR",
	}
}

func (c *Categorizer) system(error) *Categorized {
	return &Categorized{
		Category:           CategorySystem,
		Title:              "Something went wrong on this device",
		Message:            "The app ran into a problem with local storage or resources.",
		Suggestion:         "Restart the app. If the problem continues, free up storage space.",
		RequiresUserAction: true,
		ErrorCode:          "SYSTEM_ERROR",
	}
}

func (c *Categorizer) unknown(err error) *Categorized {
	return &Categorized{
		Category:   CategoryUnknown,
		Title:      "Unexpected error",
		Message:    "Something unexpected happened.",
		Suggestion: "Please try again.",
		ErrorCode:  fmt.Sprintf("%T", err),
	}
}

func humanDelay(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "an hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "a minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return fmt.Sprintf("%d seconds", int(d.Round(time.Second)/time.Second))
	}
}
