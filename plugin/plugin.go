// Package plugin defines lifecycle hooks for the authsome guard.
// Plugins are notified when a request authenticates or is rejected and
// can react — audit logging, metrics, last-seen updates. Hooks run after
// the outcome is decided and can never change it.
//
// Each hook is a separate interface so plugins opt in only to the events
// they care about.
package plugin

import "context"

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// AfterAuthenticate is called after a request authenticates successfully.
// The identity parameter is authsome.Identity (passed as any to avoid an
// import cycle).
type AfterAuthenticate interface {
	OnAuthenticate(ctx context.Context, identity any) error
}

// AfterReject is called after the guard rejects a request. The rejection
// parameter is *authsome.Rejection.
type AfterReject interface {
	OnReject(ctx context.Context, rejection any) error
}

// Shutdown is called when the hosting process shuts the guard down.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
