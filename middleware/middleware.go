// Package middleware provides net/http middleware for authsome.
//
// Authenticate gates a handler behind token authentication and stores the
// resulting Identity in the request context. RequireRole and
// RequirePermission layer the authorization check on top: they run the
// same authentication first and short-circuit with a forbidden response
// naming the missing grant. The wrapped handler only ever runs with a
// fully authorized identity in its context.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xraph/authsome"
)

// Authenticate wraps a handler with bearer-token authentication. On
// success the Identity is available downstream via
// authsome.IdentityFromContext.
func Authenticate(g *authsome.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.Authenticate(r.Context(), r)
			if err != nil {
				deny(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authsome.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole wraps a handler with authentication plus a role check.
// Authentication failures produce unauthorized; an authenticated identity
// without the role produces forbidden with a body naming the role.
func RequireRole(g *authsome.Guard, role string) func(http.Handler) http.Handler {
	return requireFunc(g, func(u authsome.Identity) error {
		return g.RequireRole(u, role)
	})
}

// RequirePermission wraps a handler with authentication plus a permission
// check (direct permissions or any granted through the identity's roles).
func RequirePermission(g *authsome.Guard, perm authsome.Permission) func(http.Handler) http.Handler {
	return requireFunc(g, func(u authsome.Identity) error {
		return g.RequirePermission(u, perm)
	})
}

func requireFunc(g *authsome.Guard, check func(authsome.Identity) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.Authenticate(r.Context(), r)
			if err != nil {
				deny(w, err)
				return
			}
			if err := check(identity); err != nil {
				deny(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authsome.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// deny writes the JSON error response for a rejection. Unauthorized
// responses carry an RFC 6750 WWW-Authenticate challenge.
func deny(w http.ResponseWriter, err error) {
	rej, ok := authsome.AsRejection(err)
	if !ok {
		rej = &authsome.Rejection{Kind: authsome.RejectOther, Message: "authentication failed"}
	}

	status := rej.StatusCode()
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		// RFC 6750 Section 3: invalid_request for malformed/missing
		// credentials, invalid_token for everything else.
		code := "invalid_token"
		if rej.Kind == authsome.RejectMissingCredential || rej.Kind == authsome.RejectMalformedCredential {
			code = "invalid_request"
		}
		w.Header().Set("WWW-Authenticate",
			fmt.Sprintf(`Bearer error="%s", error_description="%s"`, code, rej.Message))
	}
	w.WriteHeader(status)

	resp := struct {
		Error string `json:"error"`
	}{
		Error: rej.Message,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
