package authsome

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a declarative policy:
//
//	roles:
//	  admin: [manage_system, view_users]
//	  user: [view_profile, edit_profile]
type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// ParsePolicy decodes a YAML policy document into a role table suitable
// for Policies.Init.
func ParsePolicy(data []byte) (map[string]Role, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("authsome: parse policy: %w", err)
	}
	roles := make(map[string]Role, len(pf.Roles))
	for name, perms := range pf.Roles {
		roles[name] = NewRole(name, perms...)
	}
	return roles, nil
}

// LoadPolicyFile reads and parses a YAML policy file.
func LoadPolicyFile(path string) (map[string]Role, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authsome: read policy file: %w", err)
	}
	return ParsePolicy(data)
}
