package authsome

import "sync/atomic"

// Policies is the process-wide role table: a write-once mapping from role
// name to the permissions that role grants. It is initialized exactly once
// at startup and shared read-only by every concurrent request afterwards.
//
// Initialization is first-writer-wins: the table lives in an atomic cell
// and is installed with a compare-and-swap, so a second Init is a no-op
// rather than an overwrite, and readers never block a writer or each
// other.
type Policies struct {
	roles atomic.Pointer[map[string]Role]
}

// NewPolicies creates an empty, uninitialized policy registry.
func NewPolicies() *Policies { return &Policies{} }

// Init installs the role table. Only the first call takes effect; later
// calls are silently ignored so accidental re-invocation (test harnesses,
// multi-entrypoint binaries) is harmless. Init reports whether this call
// won the installation.
//
// Roles are deep-copied, so the caller's map and permission sets can be
// mutated freely afterwards without affecting the registry.
func (p *Policies) Init(roles map[string]Role) bool {
	frozen := make(map[string]Role, len(roles))
	for name, r := range roles {
		frozen[name] = Role{Name: r.Name, Permissions: r.Permissions.clone()}
	}
	return p.roles.CompareAndSwap(nil, &frozen)
}

// Lookup returns the role registered under name. It never blocks and
// treats an uninitialized registry as a miss.
func (p *Policies) Lookup(name string) (Role, bool) {
	table := p.roles.Load()
	if table == nil {
		return Role{}, false
	}
	r, ok := (*table)[name]
	return r, ok
}

// Roles returns the full role table, or ErrPoliciesNotInitialized if Init
// has not run. Use this in code paths that must treat an uninitialized
// registry as a programming error; permission queries on Identity use
// Lookup and degrade gracefully instead.
func (p *Policies) Roles() (map[string]Role, error) {
	table := p.roles.Load()
	if table == nil {
		return nil, ErrPoliciesNotInitialized
	}
	return *table, nil
}

// Initialized reports whether Init has run.
func (p *Policies) Initialized() bool { return p.roles.Load() != nil }

// PolicyBuilder assembles a role table declaratively:
//
//	authsome.NewPolicyBuilder().
//	    Role("admin").Grants("manage_system", "view_users").
//	    Role("user").Grants("view_profile", "edit_profile").
//	    AddTo(policies)
//
// Declaration order among roles is irrelevant; permissions within a role
// are stored as a set.
type PolicyBuilder struct {
	roles   map[string]Role
	current string
}

// NewPolicyBuilder creates an empty builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{roles: make(map[string]Role)}
}

// Role starts (or reopens) the definition of a named role.
func (b *PolicyBuilder) Role(name string) *PolicyBuilder {
	if _, ok := b.roles[name]; !ok {
		b.roles[name] = NewRole(name)
	}
	b.current = name
	return b
}

// Grants adds permissions to the role most recently opened with Role.
// Calling Grants before Role is a no-op.
func (b *PolicyBuilder) Grants(perms ...Permission) *PolicyBuilder {
	r, ok := b.roles[b.current]
	if !ok {
		return b
	}
	for _, p := range perms {
		r.Permissions[p] = struct{}{}
	}
	return b
}

// Build returns the assembled role table.
func (b *PolicyBuilder) Build() map[string]Role { return b.roles }

// AddTo installs the assembled table into the registry. Like Init, only
// the first installation wins; AddTo reports whether it did.
func (b *PolicyBuilder) AddTo(p *Policies) bool { return p.Init(b.roles) }
