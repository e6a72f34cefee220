package config

import (
	"context"

	"github.com/jonwraymond/recipeguard/identity"
)

// IdentityResolver builds the request identity resolver. Without a session
// secret it resolves device identities only.
func (c *Config) IdentityResolver(ctx context.Context, secrets *SecretResolver) (*identity.Resolver, error) {
	key, err := c.SessionSecret(ctx, secrets)
	if err != nil {
		return nil, err
	}
	r := &identity.Resolver{Strict: c.Session.Strict}
	if key == nil {
		return r, nil
	}
	r.Sessions, err = identity.NewSessionVerifier(identity.SessionConfig{
		Secret:   key,
		Issuer:   c.Session.Issuer,
		Audience: c.Session.Audience,
		Claim:    c.Session.Claim,
		Leeway:   c.Session.Leeway,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
