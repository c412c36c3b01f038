package authsome

import (
	"log/slog"

	"github.com/xraph/authsome/plugin"
)

// Option is a functional option for the Guard.
type Option func(*Guard)

// WithProvider registers an identity backend with the guard's provider
// registry. First registration wins, matching the registry semantics.
func WithProvider(p Provider) Option {
	return func(g *Guard) { g.providers.Register(p) }
}

// WithProviders sets the provider registry itself. Use this to share one
// registry between guards or to inject a pre-built one; it replaces the
// guard's default registry, so pass it before WithProvider.
func WithProviders(ps *Providers) Option {
	return func(g *Guard) {
		if ps != nil {
			g.providers = ps
		}
	}
}

// WithPolicies sets the policy registry used for permission checks.
func WithPolicies(p *Policies) Option {
	return func(g *Guard) {
		if p != nil {
			g.policies = p
		}
	}
}

// WithRoles initializes the guard's policy registry from a role table.
// Shorthand for building Policies separately.
func WithRoles(roles map[string]Role) Option {
	return func(g *Guard) { g.policies.Init(roles) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPlugin registers a plugin with the guard.
func WithPlugin(x plugin.Plugin) Option {
	return func(g *Guard) {
		if g.plugins == nil {
			g.plugins = plugin.NewRegistry(g.logger)
		}
		g.plugins.Register(x)
	}
}
