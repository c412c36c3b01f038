// Package authsome provides embeddable token authentication and
// role-based authorization for Go services.
//
// Identity backends (in-memory, SQL, key-value) plug in through the
// Provider interface. Roles and their permissions are declared once at
// startup in a write-once policy registry, and the request Guard turns
// an inbound bearer token into an authenticated Identity or a typed
// rejection.
//
//	policies := authsome.NewPolicies()
//	authsome.NewPolicyBuilder().
//	    Role("admin").Grants("manage_system", "view_users").
//	    Role("user").Grants("view_profile", "edit_profile").
//	    AddTo(policies)
//
//	guard := authsome.NewGuard(
//	    authsome.WithProvider(myProvider),
//	    authsome.WithPolicies(policies),
//	)
//	identity, err := guard.Authenticate(ctx, req)
package authsome

import (
	"slices"
	"sort"
)

// Permission is an opaque string naming a single capability.
// Equality is exact string match; permissions have no internal structure.
type Permission = string

// PermissionSet is a set of permissions keyed by name.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Values returns the permissions in sorted order.
func (s PermissionSet) Values() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// clone returns an independent copy of the set.
func (s PermissionSet) clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Role is a named, immutable bundle of permissions. Roles are keyed by
// name within a process; the policy registry deep-copies them on Init so
// a registered role's permission set can never change afterwards.
type Role struct {
	Name        string        `json:"name" yaml:"name"`
	Permissions PermissionSet `json:"permissions" yaml:"permissions"`
}

// NewRole creates a role granting the given permissions.
func NewRole(name string, perms ...Permission) Role {
	return Role{Name: name, Permissions: NewPermissionSet(perms...)}
}

// Identity is an authenticated principal: who they are, which roles they
// hold, and which permissions they carry directly (in addition to any
// granted through roles). An Identity is produced fresh per
// authentication call and owned by the request that authenticated it.
type Identity struct {
	// ID is the unique identifier for the principal, as assigned by the
	// identity backend. Opaque to this package.
	ID string `json:"id"`

	// DisplayName is the username or human-readable name.
	DisplayName string `json:"display_name"`

	// Roles holds the names of roles assigned to the principal, in
	// assignment order. Names that are absent from the policy registry
	// simply grant nothing.
	Roles []string `json:"roles"`

	// Permissions are granted directly, independent of any role.
	Permissions PermissionSet `json:"permissions"`
}

// NewIdentity creates an identity with no roles and no direct permissions.
func NewIdentity(id, displayName string) Identity {
	return Identity{
		ID:          id,
		DisplayName: displayName,
		Permissions: make(PermissionSet),
	}
}

// WithRole returns a copy of the identity with the role name appended.
func (u Identity) WithRole(name string) Identity {
	u.Roles = append(slices.Clone(u.Roles), name)
	return u
}

// WithRoles returns a copy of the identity with all role names appended.
func (u Identity) WithRoles(names ...string) Identity {
	u.Roles = append(slices.Clone(u.Roles), names...)
	return u
}

// WithPermission returns a copy of the identity with the direct
// permission added.
func (u Identity) WithPermission(p Permission) Identity {
	perms := u.Permissions.clone()
	perms[p] = struct{}{}
	u.Permissions = perms
	return u
}

// WithPermissions returns a copy of the identity with all direct
// permissions added.
func (u Identity) WithPermissions(perms ...Permission) Identity {
	out := u.Permissions.clone()
	for _, p := range perms {
		out[p] = struct{}{}
	}
	u.Permissions = out
	return u
}

// HasRole reports whether the identity was assigned the named role.
// This is an exact match against the role list; the policy registry is
// not consulted.
func (u Identity) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// HasPermission reports whether the identity holds the permission, either
// directly or through one of its roles. Direct permissions are checked
// first and never require the registry, so the call degrades gracefully
// (role grants resolve to nothing) when policies is nil or uninitialized.
func (u Identity) HasPermission(policies *Policies, name Permission) bool {
	if u.Permissions.Has(name) {
		return true
	}
	if policies == nil {
		return false
	}
	for _, roleName := range u.Roles {
		if r, ok := policies.Lookup(roleName); ok && r.Permissions.Has(name) {
			return true
		}
	}
	return false
}

// AllPermissions returns the full permission closure: direct permissions
// plus everything granted through roles. Unknown role names contribute
// nothing; a nil or uninitialized registry yields just the direct set.
func (u Identity) AllPermissions(policies *Policies) PermissionSet {
	out := u.Permissions.clone()
	if policies == nil {
		return out
	}
	for _, roleName := range u.Roles {
		r, ok := policies.Lookup(roleName)
		if !ok {
			continue
		}
		for p := range r.Permissions {
			out[p] = struct{}{}
		}
	}
	return out
}
