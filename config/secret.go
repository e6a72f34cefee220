package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const secretRefPrefix = "secretref:"

// SecretProvider resolves secret references.
//
// Implementations must be safe for concurrent use and must not log secret
// values.
type SecretProvider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// ParseSecretRef splits secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	if !strings.HasPrefix(value, secretRefPrefix) {
		return "", "", false
	}
	provider, ref, ok = strings.Cut(strings.TrimPrefix(value, secretRefPrefix), ":")
	if !ok || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

// SecretResolver resolves secretref values with registered providers.
// Plain values pass through unchanged.
type SecretResolver struct {
	providers map[string]SecretProvider
}

// NewSecretResolver creates a resolver with the env and file providers plus
// any extra ones. Later providers replace earlier ones of the same name.
func NewSecretResolver(extra ...SecretProvider) *SecretResolver {
	r := &SecretResolver{providers: map[string]SecretProvider{}}
	for _, p := range append([]SecretProvider{EnvProvider{}, FileProvider{}}, extra...) {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// Resolve returns the secret named by value, or value itself when it is
// not a reference. Empty resolved secrets are an error.
func (r *SecretResolver) Resolve(ctx context.Context, value string) (string, error) {
	name, ref, ok := ParseSecretRef(value)
	if !ok {
		if strings.HasPrefix(value, secretRefPrefix) {
			return "", fmt.Errorf("%w: malformed reference", ErrSecret)
		}
		return value, nil
	}
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: provider %q is not registered", ErrSecret, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSecret, name, err)
	}
	if v == "" {
		return "", fmt.Errorf("%w: provider %q returned an empty value", ErrSecret, name)
	}
	return v, nil
}

// EnvProvider resolves secretref:env:<VAR>.
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", ref)
	}
	return v, nil
}

// FileProvider resolves secretref:file:<path>.
type FileProvider struct{}

func (FileProvider) Name() string { return "file" }

func (FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
