package identity

import "context"

// Credentials are what a client presents with a request.
type Credentials struct {
	SessionToken string
	DeviceID     string
}

// Resolver picks the identity for a request: a verified session first, then
// the device id, then Anonymous.
type Resolver struct {
	// Sessions verifies session tokens. Nil disables session identities.
	Sessions *SessionVerifier

	// Strict rejects requests whose session token fails verification
	// instead of falling back to the device id.
	Strict bool
}

// Resolve returns the identity for creds and a context carrying it.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (context.Context, Identity, error) {
	if r.Sessions != nil && creds.SessionToken != "" {
		id, err := r.Sessions.Verify(creds.SessionToken)
		if err == nil {
			return WithIdentity(ctx, id), id, nil
		}
		if r.Strict {
			return ctx, "", err
		}
	}
	id := DeviceIdentity(creds.DeviceID)
	return WithIdentity(ctx, id), id, nil
}
