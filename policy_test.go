package authsome

import (
	"errors"
	"sync"
	"testing"
)

func TestInitIsWriteOnce(t *testing.T) {
	p := NewPolicies()
	first := map[string]Role{"admin": NewRole("admin", "manage_system")}
	second := map[string]Role{"admin": NewRole("admin", "nothing")}

	if !p.Init(first) {
		t.Fatal("first Init should win")
	}
	if p.Init(second) {
		t.Fatal("second Init should be ignored")
	}

	r, ok := p.Lookup("admin")
	if !ok {
		t.Fatal("expected admin role")
	}
	if !r.Permissions.Has("manage_system") || r.Permissions.Has("nothing") {
		t.Fatalf("second Init overwrote the table: %v", r.Permissions.Values())
	}
}

func TestInitDeepCopies(t *testing.T) {
	p := NewPolicies()
	roles := map[string]Role{"admin": NewRole("admin", "manage_system")}
	p.Init(roles)

	// Mutating the caller's map after Init must not leak into the registry.
	roles["admin"].Permissions["injected"] = struct{}{}
	delete(roles, "admin")

	r, ok := p.Lookup("admin")
	if !ok {
		t.Fatal("expected admin role to survive caller mutation")
	}
	if r.Permissions.Has("injected") {
		t.Fatal("caller mutation reached the registry")
	}
}

func TestRolesBeforeInit(t *testing.T) {
	p := NewPolicies()
	if p.Initialized() {
		t.Fatal("fresh registry reported initialized")
	}
	if _, err := p.Roles(); !errors.Is(err, ErrPoliciesNotInitialized) {
		t.Fatalf("expected ErrPoliciesNotInitialized, got %v", err)
	}
	if _, ok := p.Lookup("admin"); ok {
		t.Fatal("lookup on uninitialized registry matched")
	}
}

func TestConcurrentInitSingleWinner(t *testing.T) {
	p := NewPolicies()

	var wg sync.WaitGroup
	wins := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			roles := map[string]Role{"winner": NewRole("winner", Permission(rune('a' + n)))}
			if p.Init(roles) {
				wins <- n
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []int
	for n := range wins {
		winners = append(winners, n)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winning Init, got %d", len(winners))
	}
}

func TestPolicyBuilder(t *testing.T) {
	table := NewPolicyBuilder().
		Role("admin").Grants("manage_system").
		Role("user").Grants("view_profile").
		Role("admin").Grants("view_users").
		Build()

	admin, ok := table["admin"]
	if !ok {
		t.Fatal("expected admin role")
	}
	if !admin.Permissions.Has("manage_system") || !admin.Permissions.Has("view_users") {
		t.Fatalf("reopened role lost grants: %v", admin.Permissions.Values())
	}
	if table["user"].Permissions.Has("manage_system") {
		t.Fatal("grant leaked across roles")
	}
}

func TestGrantsBeforeRoleIsNoop(t *testing.T) {
	table := NewPolicyBuilder().Grants("orphaned").Build()
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %v", table)
	}
}

func TestParsePolicy(t *testing.T) {
	doc := []byte(`
roles:
  admin: [manage_system, view_users]
  user:
    - view_profile
    - edit_profile
`)
	roles, err := ParsePolicy(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected two roles, got %d", len(roles))
	}
	if !roles["admin"].Permissions.Has("view_users") {
		t.Fatal("admin missing view_users")
	}
	if !roles["user"].Permissions.Has("edit_profile") {
		t.Fatal("user missing edit_profile")
	}
}

func TestParsePolicyRejectsBadYAML(t *testing.T) {
	if _, err := ParsePolicy([]byte("roles: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}
