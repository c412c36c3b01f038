package authsome

import "context"

// TokenCache stores successful token resolutions so hot tokens skip the
// identity backend. Only successes may be cached: a failed authentication
// must always be re-checked against the backend.
type TokenCache interface {
	// Get returns the cached identity for a token, if present and fresh.
	Get(ctx context.Context, token string) (Identity, bool)

	// Set stores the identity resolved for a token.
	Set(ctx context.Context, token string, identity Identity)

	// Invalidate drops a single token, e.g. after revocation.
	Invalidate(ctx context.Context, token string)
}
