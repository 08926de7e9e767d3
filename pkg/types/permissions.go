package types

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
)

// PermissionLevel is the access granted to a GITHUB_TOKEN scope.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionNone  PermissionLevel = "none"
)

// PermissionScope names a GITHUB_TOKEN scope as it appears in a workflow.
type PermissionScope string

const (
	PermissionActions        PermissionScope = "actions"
	PermissionChecks         PermissionScope = "checks"
	PermissionContents       PermissionScope = "contents"
	PermissionDeployments    PermissionScope = "deployments"
	PermissionDiscussions    PermissionScope = "discussions"
	PermissionIDToken        PermissionScope = "id-token"
	PermissionIssues         PermissionScope = "issues"
	PermissionPackages       PermissionScope = "packages"
	PermissionPages          PermissionScope = "pages"
	PermissionPullRequests   PermissionScope = "pull-requests"
	PermissionSecurityEvents PermissionScope = "security-events"
	PermissionStatuses       PermissionScope = "statuses"
)

var knownScopes = map[PermissionScope]bool{
	PermissionActions: true, PermissionChecks: true, PermissionContents: true,
	PermissionDeployments: true, PermissionDiscussions: true, PermissionIDToken: true,
	PermissionIssues: true, PermissionPackages: true, PermissionPages: true,
	PermissionPullRequests: true, PermissionSecurityEvents: true, PermissionStatuses: true,
}

// Permissions is the permission block of a job. The zero value grants
// nothing and renders as an empty mapping.
type Permissions struct {
	perms map[PermissionScope]PermissionLevel
}

// NewPermissions builds a permission set from scope/level pairs.
func NewPermissions(pairs map[PermissionScope]PermissionLevel) *Permissions {
	p := &Permissions{}
	for scope, level := range pairs {
		p.Set(scope, level)
	}
	return p
}

// Set grants level on scope. An empty level removes the scope.
func (p *Permissions) Set(scope PermissionScope, level PermissionLevel) {
	if level == "" {
		delete(p.perms, scope)
		return
	}
	if p.perms == nil {
		p.perms = make(map[PermissionScope]PermissionLevel)
	}
	p.perms[scope] = level
}

// Get returns the level granted on scope.
func (p *Permissions) Get(scope PermissionScope) (PermissionLevel, bool) {
	if p == nil {
		return "", false
	}
	level, ok := p.perms[scope]
	return level, ok
}

// Merge returns a copy of p with every scope of overlay applied on top.
func (p *Permissions) Merge(overlay *Permissions) *Permissions {
	merged := &Permissions{}
	if p != nil {
		for scope, level := range p.perms {
			merged.Set(scope, level)
		}
	}
	if overlay != nil {
		for scope, level := range overlay.perms {
			merged.Set(scope, level)
		}
	}
	return merged
}

// Len returns the number of scopes set.
func (p *Permissions) Len() int {
	if p == nil {
		return 0
	}
	return len(p.perms)
}

// Render returns the scopes in name order.
func (p *Permissions) Render() yaml.MapSlice {
	out := yaml.MapSlice{}
	if p == nil {
		return out
	}
	scopes := make([]string, 0, len(p.perms))
	for scope := range p.perms {
		scopes = append(scopes, string(scope))
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		out = append(out, yaml.MapItem{Key: scope, Value: string(p.perms[PermissionScope(scope)])})
	}
	return out
}

// UnmarshalYAML decodes a `scope: level` mapping and rejects unknown
// scopes or levels.
func (p *Permissions) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	for key, value := range raw {
		scope := PermissionScope(key)
		if !knownScopes[scope] {
			return fmt.Errorf("unknown permission scope %q", key)
		}
		level := PermissionLevel(value)
		switch level {
		case PermissionRead, PermissionWrite, PermissionNone:
		default:
			return fmt.Errorf("invalid permission level %q for %s (must be read, write or none)", value, key)
		}
		p.Set(scope, level)
	}
	return nil
}

// MarshalYAML encodes the permission set as an ordered mapping.
func (p *Permissions) MarshalYAML() (any, error) {
	return p.Render(), nil
}
