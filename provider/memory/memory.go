// Package memory provides an in-memory authsome identity backend. It is
// intended for testing and development: tokens and the identities they
// resolve to are held in a mutex-guarded map.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.Provider = (*Provider)(nil)

// Provider is a thread-safe in-memory token store.
type Provider struct {
	mu     sync.RWMutex
	tokens map[string]authsome.Identity
}

// New creates an empty in-memory provider.
func New() *Provider {
	return &Provider{tokens: make(map[string]authsome.Identity)}
}

// SetToken maps a token to the identity it authenticates as. Existing
// mappings are replaced.
func (p *Provider) SetToken(token string, identity authsome.Identity) {
	p.mu.Lock()
	p.tokens[token] = identity
	p.mu.Unlock()
}

// DeleteToken revokes a token.
func (p *Provider) DeleteToken(token string) {
	p.mu.Lock()
	delete(p.tokens, token)
	p.mu.Unlock()
}

// AuthenticateToken implements authsome.Provider.
func (p *Provider) AuthenticateToken(_ context.Context, token string) (authsome.Identity, error) {
	p.mu.RLock()
	identity, ok := p.tokens[token]
	p.mu.RUnlock()
	if !ok {
		return authsome.Identity{}, authsome.InvalidToken("unknown token")
	}
	return identity, nil
}
