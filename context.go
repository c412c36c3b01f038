package authsome

import "context"

type contextKey int

const ctxKeyIdentity contextKey = iota

// ContextWithIdentity returns a context carrying the authenticated
// identity. The middleware package uses this to hand the identity to
// downstream handlers.
func ContextWithIdentity(ctx context.Context, u Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, u)
}

// IdentityFromContext returns the authenticated identity stored in the
// context, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	u, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return u, ok
}
