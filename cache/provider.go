package cache

import (
	"context"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.Provider = (*Provider)(nil)

// Provider decorates an identity backend with a token cache. Successful
// authentications are served from the cache until they expire; failures
// are never cached, so an invalid token always costs a backend round
// trip.
type Provider struct {
	next  authsome.Provider
	cache authsome.TokenCache
}

// NewProvider wraps next with the given cache. A nil cache gets a
// default Memory cache.
func NewProvider(next authsome.Provider, cache authsome.TokenCache) *Provider {
	if cache == nil {
		cache = NewMemory()
	}
	return &Provider{next: next, cache: cache}
}

// AuthenticateToken implements authsome.Provider.
func (p *Provider) AuthenticateToken(ctx context.Context, token string) (authsome.Identity, error) {
	if identity, ok := p.cache.Get(ctx, token); ok {
		return identity, nil
	}
	identity, err := p.next.AuthenticateToken(ctx, token)
	if err != nil {
		return authsome.Identity{}, err
	}
	p.cache.Set(ctx, token, identity)
	return identity, nil
}

// Invalidate drops a token from the cache, e.g. after revocation.
func (p *Provider) Invalidate(ctx context.Context, token string) {
	p.cache.Invalidate(ctx, token)
}
