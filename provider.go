package authsome

import (
	"context"
	"sync/atomic"
)

// Provider is the contract an identity backend implements to turn an
// opaque bearer token into an authenticated Identity.
//
// Implementations must be safe for concurrent calls from unboundedly many
// simultaneous requests, must honor context cancellation on any I/O, and
// must never panic on malformed tokens — a token that resolves to nothing
// is a normal *AuthError, not a fatal condition. Token format, expiry and
// revocation semantics are entirely the provider's business.
type Provider interface {
	// AuthenticateToken validates the token and returns the identity it
	// belongs to, or an *AuthError describing why it could not.
	AuthenticateToken(ctx context.Context, token string) (Identity, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, token string) (Identity, error)

// AuthenticateToken implements Provider.
func (f ProviderFunc) AuthenticateToken(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// providerCell boxes the interface value so it can live in an atomic
// pointer.
type providerCell struct {
	provider Provider
}

// Providers is the write-once holder of the single active Provider. Like
// Policies it is an atomic first-writer-wins cell: registration races
// resolve by ignoring the loser, and request-path reads never block.
type Providers struct {
	current atomic.Pointer[providerCell]
}

// NewProviders creates an empty provider registry.
func NewProviders() *Providers { return &Providers{} }

// Register installs the provider. Only the first registration takes
// effect; Register reports whether this call won.
func (ps *Providers) Register(p Provider) bool {
	if p == nil {
		return false
	}
	return ps.current.CompareAndSwap(nil, &providerCell{provider: p})
}

// Current returns the registered provider, or ErrNoProvider if none has
// been registered yet.
func (ps *Providers) Current() (Provider, error) {
	cell := ps.current.Load()
	if cell == nil {
		return nil, ErrNoProvider
	}
	return cell.provider, nil
}
