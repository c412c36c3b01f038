package authsome

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPoliciesNotInitialized is returned when the policy registry is
	// accessed through Roles before Init has run. This is an operator
	// error: the process was never correctly started.
	ErrPoliciesNotInitialized = errors.New("authsome: policies not initialized")

	// ErrNoProvider is returned when no authentication provider has been
	// registered. Like ErrPoliciesNotInitialized, this indicates a
	// misconfigured process, not a bad request.
	ErrNoProvider = errors.New("authsome: no authentication provider registered")
)

// ErrorKind classifies authentication failures reported by providers.
type ErrorKind string

const (
	// KindInvalidToken means the token does not correspond to any live
	// identity (unknown, expired, or revoked).
	KindInvalidToken ErrorKind = "invalid_token"

	// KindBackendUnavailable means the identity backend could not be
	// reached or queried. Surfaced to callers as unauthorized, never as
	// success, but distinguishable from KindInvalidToken in logs.
	KindBackendUnavailable ErrorKind = "backend_unavailable"

	// KindUserNotFound means the token was structurally valid but the
	// referenced identity no longer exists.
	KindUserNotFound ErrorKind = "user_not_found"

	// KindOther covers provider-specific failures.
	KindOther ErrorKind = "other"
)

// AuthError is the typed failure a Provider returns when a token cannot
// be resolved to an Identity. Backend-specific errors (database, network)
// must be translated into an AuthError at the provider boundary; they
// never cross the guard as uncaught faults.
type AuthError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch e.Kind {
	case KindInvalidToken:
		return "authsome: invalid token: " + e.Detail
	case KindBackendUnavailable:
		return "authsome: backend unavailable: " + e.Detail
	case KindUserNotFound:
		return "authsome: user not found"
	default:
		return "authsome: " + e.Detail
	}
}

// Unwrap returns the underlying backend error, if any.
func (e *AuthError) Unwrap() error { return e.Err }

// InvalidToken builds an AuthError for a token that resolves to no live
// identity.
func InvalidToken(detail string) *AuthError {
	return &AuthError{Kind: KindInvalidToken, Detail: detail}
}

// BackendUnavailable builds an AuthError for a backend that could not be
// queried. The wrapped err is kept for logs; its text is never surfaced
// to callers.
func BackendUnavailable(detail string, err error) *AuthError {
	return &AuthError{Kind: KindBackendUnavailable, Detail: detail, Err: err}
}

// UserNotFound builds an AuthError for a structurally valid token whose
// identity no longer exists.
func UserNotFound() *AuthError {
	return &AuthError{Kind: KindUserNotFound}
}

// OtherError builds an AuthError for provider-specific failures that fit
// no other kind.
func OtherError(detail string) *AuthError {
	return &AuthError{Kind: KindOther, Detail: detail}
}

// RejectionKind classifies terminal guard outcomes.
type RejectionKind string

const (
	// RejectMissingCredential: the request carried no Authorization header.
	RejectMissingCredential RejectionKind = "missing_credential"

	// RejectMalformedCredential: the Authorization header did not use the
	// Bearer scheme.
	RejectMalformedCredential RejectionKind = "malformed_credential"

	// RejectServerMisconfigured: no provider registered. An operator
	// error, not a caller error.
	RejectServerMisconfigured RejectionKind = "server_misconfigured"

	// RejectInvalidToken, RejectBackendUnavailable, RejectUserNotFound and
	// RejectOther mirror the provider error kinds.
	RejectInvalidToken       RejectionKind = "invalid_token"
	RejectBackendUnavailable RejectionKind = "backend_unavailable"
	RejectUserNotFound       RejectionKind = "user_not_found"
	RejectOther              RejectionKind = "other"

	// RejectMissingRole and RejectMissingPermission are authorization
	// failures: the identity authenticated fine but lacks the required
	// grant. Always caller-facing as forbidden.
	RejectMissingRole       RejectionKind = "missing_role"
	RejectMissingPermission RejectionKind = "missing_permission"
)

// Rejection is the structured outcome of a failed guard run. Message is
// safe to return to the caller; backend detail stays in the logs.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string { return r.Message }

// StatusCode returns the HTTP status equivalent to the rejection kind.
func (r *Rejection) StatusCode() int {
	switch r.Kind {
	case RejectServerMisconfigured:
		return http.StatusInternalServerError
	case RejectMissingRole, RejectMissingPermission:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// AsRejection unwraps err into a *Rejection, if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// rejectAuthError maps a provider AuthError onto the matching rejection.
// The message is intentionally generic: provider detail may contain
// backend internals (connection strings, key names) and must not leak.
func rejectAuthError(err *AuthError) *Rejection {
	switch err.Kind {
	case KindBackendUnavailable:
		return &Rejection{Kind: RejectBackendUnavailable, Message: "authentication failed"}
	case KindUserNotFound:
		return &Rejection{Kind: RejectUserNotFound, Message: "authentication failed"}
	case KindOther:
		return &Rejection{Kind: RejectOther, Message: "authentication failed"}
	default:
		return &Rejection{Kind: RejectInvalidToken, Message: "authentication failed"}
	}
}

// missingRole builds the forbidden rejection for a role the identity
// does not hold. The message names the role so callers know what was
// required.
func missingRole(name string) *Rejection {
	return &Rejection{Kind: RejectMissingRole, Message: fmt.Sprintf("role %q required", name)}
}

// missingPermission builds the forbidden rejection for an absent
// permission.
func missingPermission(name Permission) *Rejection {
	return &Rejection{Kind: RejectMissingPermission, Message: fmt.Sprintf("permission %q required", name)}
}
