package authsome

import "testing"

// fixturePolicies builds the registry used across identity tests: an
// admin role, a user role, and one role left unregistered on purpose.
func fixturePolicies(t *testing.T) *Policies {
	t.Helper()
	p := NewPolicies()
	ok := NewPolicyBuilder().
		Role("admin").Grants("manage_system", "view_users", "edit_settings").
		Role("user").Grants("view_profile", "edit_profile").
		AddTo(p)
	if !ok {
		t.Fatal("expected first installation to win")
	}
	return p
}

func TestIdentityBuilderIsPure(t *testing.T) {
	base := NewIdentity("1", "alice")
	withRole := base.WithRole("admin")
	withPerm := base.WithPermission("special_access")

	if len(base.Roles) != 0 || len(base.Permissions) != 0 {
		t.Fatalf("base identity mutated: %+v", base)
	}
	if !withRole.HasRole("admin") {
		t.Fatal("WithRole result missing role")
	}
	if withRole.Permissions.Has("special_access") {
		t.Fatal("role copy leaked the permission copy's state")
	}
	if !withPerm.Permissions.Has("special_access") {
		t.Fatal("WithPermission result missing permission")
	}

	// Extending a derived identity must not reach back into its parent.
	extended := withRole.WithRole("user")
	if len(withRole.Roles) != 1 {
		t.Fatalf("parent role list grew: %v", withRole.Roles)
	}
	if len(extended.Roles) != 2 {
		t.Fatalf("expected two roles, got %v", extended.Roles)
	}
}

func TestHasRole(t *testing.T) {
	u := NewIdentity("1", "alice").WithRoles("admin", "user")
	if !u.HasRole("admin") || !u.HasRole("user") {
		t.Fatal("expected assigned roles to match")
	}
	if u.HasRole("auditor") {
		t.Fatal("unassigned role matched")
	}
}

func TestHasPermissionThroughRole(t *testing.T) {
	p := fixturePolicies(t)
	u := NewIdentity("1", "alice").WithRole("user")

	if !u.HasPermission(p, "view_profile") {
		t.Fatal("expected permission granted through role")
	}
	if u.HasPermission(p, "manage_system") {
		t.Fatal("permission from an unheld role matched")
	}
}

func TestHasPermissionDirectShortCircuit(t *testing.T) {
	// Direct permissions resolve without any registry at all.
	u := NewIdentity("1", "alice").WithPermission("special_access")

	if !u.HasPermission(nil, "special_access") {
		t.Fatal("direct permission should not need the registry")
	}
	if !u.HasPermission(NewPolicies(), "special_access") {
		t.Fatal("direct permission should not need an initialized registry")
	}
}

func TestHasPermissionDegradesGracefully(t *testing.T) {
	u := NewIdentity("1", "alice").WithRole("admin")

	if u.HasPermission(nil, "manage_system") {
		t.Fatal("nil registry granted a role permission")
	}
	if u.HasPermission(NewPolicies(), "manage_system") {
		t.Fatal("uninitialized registry granted a role permission")
	}
}

func TestUnknownRoleGrantsNothing(t *testing.T) {
	p := fixturePolicies(t)
	u := NewIdentity("1", "alice").WithRole("ghost")

	if u.HasPermission(p, "view_profile") {
		t.Fatal("unregistered role granted a permission")
	}
	if got := u.AllPermissions(p); len(got) != 0 {
		t.Fatalf("expected empty closure, got %v", got.Values())
	}
}

func TestAllPermissionsUnion(t *testing.T) {
	p := fixturePolicies(t)
	u := NewIdentity("1", "alice").
		WithRoles("admin", "user").
		WithPermission("special_access")

	got := u.AllPermissions(p)
	want := []Permission{
		"edit_profile", "edit_settings", "manage_system",
		"special_access", "view_profile", "view_users",
	}
	values := got.Values()
	if len(values) != len(want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	for i, perm := range want {
		if values[i] != perm {
			t.Fatalf("expected %v, got %v", want, values)
		}
	}
}

func TestAllPermissionsCopyIsIndependent(t *testing.T) {
	p := fixturePolicies(t)
	u := NewIdentity("1", "alice").WithRole("user")

	closure := u.AllPermissions(p)
	closure["injected"] = struct{}{}

	if u.Permissions.Has("injected") {
		t.Fatal("mutating the closure reached the identity")
	}
	if r, _ := p.Lookup("user"); r.Permissions.Has("injected") {
		t.Fatal("mutating the closure reached the registry")
	}
}
