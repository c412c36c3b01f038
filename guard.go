package authsome

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xraph/authsome/plugin"
)

// bearerPrefix is the literal credential scheme the guard accepts:
// case-sensitive, exactly one space. The remainder of the header is the
// token, verbatim.
const bearerPrefix = "Bearer "

// Guard turns an inbound request into an authenticated Identity or a
// typed *Rejection. It runs once per request, never retries, and has no
// side effects beyond the returned outcome and plugin notifications.
//
// A Guard is safe for concurrent use: the registries it reads are
// write-once and every Identity it produces is private to the request
// that authenticated it.
type Guard struct {
	providers *Providers
	policies  *Policies
	plugins   *plugin.Registry
	logger    *slog.Logger
}

// NewGuard creates a guard with the given options. A guard built with no
// provider still works — it rejects every request as misconfigured — so
// registration order at startup is not load-bearing.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		providers: NewProviders(),
		policies:  NewPolicies(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policies returns the guard's policy registry.
func (g *Guard) Policies() *Policies { return g.policies }

// Providers returns the guard's provider registry.
func (g *Guard) Providers() *Providers { return g.providers }

// Shutdown notifies plugins that the hosting process is stopping.
func (g *Guard) Shutdown(ctx context.Context) error {
	if g.plugins != nil {
		g.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Authenticate extracts the bearer token from the request's Authorization
// header and resolves it through the registered provider.
//
// The outcome is terminal per request:
//   - no Authorization header          → Rejection(MissingCredential)
//   - scheme other than "Bearer "      → Rejection(MalformedCredential)
//   - no provider registered           → Rejection(ServerMisconfigured)
//   - provider failure                 → Rejection mapped from the AuthError
//   - otherwise                        → the authenticated Identity
func (g *Guard) Authenticate(ctx context.Context, r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, g.reject(ctx, &Rejection{
			Kind:    RejectMissingCredential,
			Message: "authorization header is required",
		})
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{}, g.reject(ctx, &Rejection{
			Kind:    RejectMalformedCredential,
			Message: "authorization header must use the Bearer scheme",
		})
	}

	return g.AuthenticateToken(ctx, header[len(bearerPrefix):])
}

// AuthenticateToken resolves a raw token through the registered provider.
// Use this for transports that carry tokens outside the Authorization
// header (websockets, message queues); Authenticate delegates here after
// header extraction.
func (g *Guard) AuthenticateToken(ctx context.Context, token string) (Identity, error) {
	provider, err := g.providers.Current()
	if err != nil {
		g.logger.Error("authentication provider not registered")
		return Identity{}, g.reject(ctx, &Rejection{
			Kind:    RejectServerMisconfigured,
			Message: "authentication is not configured",
		})
	}

	identity, err := provider.AuthenticateToken(ctx, token)
	if err != nil {
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			// Providers are supposed to translate backend failures into
			// AuthError at their boundary; anything else is treated as a
			// provider-specific failure rather than crossing the guard raw.
			authErr = &AuthError{Kind: KindOther, Detail: err.Error(), Err: err}
		}
		g.logger.Warn("authentication failed",
			slog.String("kind", string(authErr.Kind)),
			slog.String("detail", authErr.Detail),
		)
		return Identity{}, g.reject(ctx, rejectAuthError(authErr))
	}

	g.logger.Debug("authentication succeeded",
		slog.String("subject", identity.ID),
	)
	if g.plugins != nil {
		g.plugins.EmitAuthenticate(ctx, identity)
	}
	return identity, nil
}

// RequireRole enforces that an authenticated identity holds the named
// role. It is the second, independent gate layered on top of a successful
// Authenticate and must only run after it.
func (g *Guard) RequireRole(u Identity, name string) error {
	if !u.HasRole(name) {
		return missingRole(name)
	}
	return nil
}

// RequirePermission enforces that an authenticated identity holds the
// permission, directly or through its roles.
func (g *Guard) RequirePermission(u Identity, name Permission) error {
	if !u.HasPermission(g.policies, name) {
		return missingPermission(name)
	}
	return nil
}

// reject notifies plugins and returns the rejection as an error.
func (g *Guard) reject(ctx context.Context, rej *Rejection) error {
	if g.plugins != nil {
		g.plugins.EmitReject(ctx, rej)
	}
	return rej
}
