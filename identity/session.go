package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionConfig configures a SessionVerifier.
type SessionConfig struct {
	// Secret is the HS256 signing key.
	Secret []byte `yaml:"-"`

	// Issuer is the expected iss claim. Empty skips the check.
	Issuer string `yaml:"issuer"`

	// Audience is the expected aud claim. Empty skips the check.
	Audience string `yaml:"audience"`

	// Claim names the claim holding the subject.
	// Default: "sub"
	Claim string `yaml:"claim"`

	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration `yaml:"leeway"`

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time `yaml:"-"`
}

// SessionVerifier validates HS256 session tokens.
type SessionVerifier struct {
	cfg    SessionConfig
	parser *jwt.Parser
}

// NewSessionVerifier creates a verifier. It fails when no secret is set.
func NewSessionVerifier(cfg SessionConfig) (*SessionVerifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if cfg.Claim == "" {
		cfg.Claim = "sub"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(cfg.Now),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &SessionVerifier{cfg: cfg, parser: jwt.NewParser(opts...)}, nil
}

// Verify checks token and returns the session identity it names. A
// "Bearer" scheme prefix is accepted; a bare scheme is a missing token.
func (v *SessionVerifier) Verify(token string) (Identity, error) {
	token = stripBearer(token)
	if token == "" {
		return "", ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, _ := claims[v.cfg.Claim].(string)
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingClaim, v.cfg.Claim)
	}
	return SessionIdentity(subject), nil
}

func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	rest, ok := strings.CutPrefix(token, "Bearer")
	if !ok {
		return token
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return token
	}
	return strings.TrimSpace(rest)
}

// Issue signs a session token for subject valid for ttl. It exists for
// operator tooling and tests; production tokens come from the account
// service.
func (v *SessionVerifier) Issue(subject string, ttl time.Duration) (string, error) {
	now := v.cfg.Now()
	claims := jwt.MapClaims{
		v.cfg.Claim: subject,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	if v.cfg.Issuer != "" {
		claims["iss"] = v.cfg.Issuer
	}
	if v.cfg.Audience != "" {
		claims["aud"] = v.cfg.Audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.cfg.Secret)
}
