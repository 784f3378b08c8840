// Package oauth2 holds the external-provider side of OAuth login: building
// the authorization redirect, exchanging the callback code, and normalizing
// what the provider asserts about the user. Providers return identity facts
// only; resolving them to a local account happens in the auth package.
package oauth2

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"accounts-service/internal/auth"
)

// Provider defines the contract an external OAuth provider implements.
type Provider interface {
	// Name returns the provider identifier (e.g., "github").
	Name() string

	// AuthCodeURL builds the authorization URL for the redirect leg.
	// The anti-forgery state is provided by the caller.
	AuthCodeURL(state string) string

	// Exchange trades the callback code for the provider's identity
	// assertion about the user.
	Exchange(ctx context.Context, code string) (*auth.ExternalIdentity, error)
}

// Registry manages configured OAuth providers, looked up by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry with the given providers.
func NewRegistry(list ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range list {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", name)
	}
	return p, nil
}

// GenerateState creates the random anti-forgery state carried across the
// redirect round-trip. 32 bytes = 256 bits of entropy.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
