package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-at-least-32-bytes-long!!")

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestNewSessionVerifier_NoSecret(t *testing.T) {
	if _, err := NewSessionVerifier(SessionConfig{}); !errors.Is(err, ErrNoSecret) {
		t.Errorf("NewSessionVerifier() error = %v, want ErrNoSecret", err)
	}
}

func TestSessionVerifier_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v, err := NewSessionVerifier(SessionConfig{Secret: testSecret, Issuer: "recipes", Now: fixedClock(now)})
	if err != nil {
		t.Fatalf("NewSessionVerifier() error = %v", err)
	}
	tok, err := v.Issue("user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	for _, in := range []string{tok, "Bearer " + tok, " Bearer\t" + tok + "\n"} {
		id, err := v.Verify(in)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if id != "session:user-42" {
			t.Errorf("Verify() = %q, want session:user-42", id)
		}
	}
}

func TestSessionVerifier_Errors(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v, _ := NewSessionVerifier(SessionConfig{Secret: testSecret, Issuer: "recipes", Now: fixedClock(now)})

	sign := func(claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		return s
	}
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": "u", "iss": "recipes", "exp": now.Add(time.Hour).Unix()}
	}

	expired := valid()
	expired["exp"] = now.Add(-time.Minute).Unix()
	wrongIssuer := valid()
	wrongIssuer["iss"] = "someone-else"
	noSub := valid()
	delete(noSub, "sub")
	noExp := valid()
	delete(noExp, "exp")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"bare scheme", "Bearer", ErrMissingToken},
		{"scheme and tab", "  Bearer\t ", ErrMissingToken},
		{"scheme glued to garbage", "Bearerxyz", ErrInvalidToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"expired", sign(expired, jwt.SigningMethodHS256, testSecret), ErrTokenExpired},
		{"wrong key", sign(valid(), jwt.SigningMethodHS256, []byte("other-secret-other-secret-other!!")), ErrInvalidToken},
		{"wrong alg", sign(valid(), jwt.SigningMethodHS512, testSecret), ErrInvalidToken},
		{"wrong issuer", sign(wrongIssuer, jwt.SigningMethodHS256, testSecret), ErrInvalidToken},
		{"no exp", sign(noExp, jwt.SigningMethodHS256, testSecret), ErrInvalidToken},
		{"no subject", sign(noSub, jwt.SigningMethodHS256, testSecret), ErrMissingClaim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSessionVerifier_CustomClaim(t *testing.T) {
	now := time.Now()
	v, _ := NewSessionVerifier(SessionConfig{Secret: testSecret, Claim: "device_id", Now: fixedClock(now)})
	tok, _ := v.Issue("phone-1", time.Minute)
	id, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id != "session:phone-1" {
		t.Errorf("Verify() = %q", id)
	}
}

func TestResolver(t *testing.T) {
	v, _ := NewSessionVerifier(SessionConfig{Secret: testSecret})
	tok, _ := v.Issue("user-1", time.Hour)

	tests := []struct {
		name    string
		r       Resolver
		creds   Credentials
		want    Identity
		wantErr bool
	}{
		{"session", Resolver{Sessions: v}, Credentials{SessionToken: tok, DeviceID: "d"}, "session:user-1", false},
		{"device", Resolver{Sessions: v}, Credentials{DeviceID: "d"}, "device:d", false},
		{"anonymous", Resolver{}, Credentials{}, Anonymous, false},
		{"bad token falls back", Resolver{Sessions: v}, Credentials{SessionToken: "bad", DeviceID: "d"}, "device:d", false},
		{"bad token strict", Resolver{Sessions: v, Strict: true}, Credentials{SessionToken: "bad", DeviceID: "d"}, "", true},
		{"no verifier ignores token", Resolver{}, Credentials{SessionToken: tok, DeviceID: "d"}, "device:d", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, id, err := tt.r.Resolve(context.Background(), tt.creds)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if id != tt.want {
				t.Errorf("Resolve() = %q, want %q", id, tt.want)
			}
			if !tt.wantErr && FromContext(ctx) != tt.want {
				t.Errorf("context carries %q, want %q", FromContext(ctx), tt.want)
			}
		})
	}
}
