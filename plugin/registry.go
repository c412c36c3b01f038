package plugin

import (
	"context"
	"log/slog"
)

// Named entry types pair a hook with the plugin name for logging.

type afterAuthenticateEntry struct {
	name string
	hook AfterAuthenticate
}
type afterRejectEntry struct {
	name string
	hook AfterReject
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	afterAuthenticate []afterAuthenticateEntry
	afterReject       []afterRejectEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable hook
// caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(AfterAuthenticate); ok {
		r.afterAuthenticate = append(r.afterAuthenticate, afterAuthenticateEntry{name, h})
	}
	if h, ok := p.(AfterReject); ok {
		r.afterReject = append(r.afterReject, afterRejectEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitAuthenticate notifies all plugins that implement AfterAuthenticate.
func (r *Registry) EmitAuthenticate(ctx context.Context, identity any) {
	for _, e := range r.afterAuthenticate {
		if err := e.hook.OnAuthenticate(ctx, identity); err != nil {
			r.logHookError("OnAuthenticate", e.name, err)
		}
	}
}

// EmitReject notifies all plugins that implement AfterReject.
func (r *Registry) EmitReject(ctx context.Context, rejection any) {
	for _, e := range r.afterReject {
		if err := e.hook.OnReject(ctx, rejection); err != nil {
			r.logHookError("OnReject", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the request.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
