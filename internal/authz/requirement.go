package authz

import (
	"strings"
	"sync"
)

// Permission identifies a fine-grained capability, resolved per business
// context by an external resolver. Values live next to the modules that own
// them (see internal/shared).
type Permission string

// Context carries the tenant scope a permission check applies to. Fields are
// filled independently: a declared hint wins, then a route parameter, then a
// request-body field.
type Context struct {
	BusinessID      string
	LocationID      string
	DepartmentID    string
	ResourceOwnerID string
}

// merge fills empty fields of c from fallback, field by field.
func (c Context) merge(fallback Context) Context {
	if c.BusinessID == "" {
		c.BusinessID = fallback.BusinessID
	}
	if c.LocationID == "" {
		c.LocationID = fallback.LocationID
	}
	if c.DepartmentID == "" {
		c.DepartmentID = fallback.DepartmentID
	}
	if c.ResourceOwnerID == "" {
		c.ResourceOwnerID = fallback.ResourceOwnerID
	}
	return c
}

// Requirement is an authorization policy declared against an operation.
// Exactly two kinds exist: RoleRequirement and PermissionRequirement.
type Requirement interface {
	isRequirement()
}

// RoleRequirement allows callers whose role matches one of Roles or outranks
// the weakest of them.
type RoleRequirement struct {
	Roles []Role
}

func (RoleRequirement) isRequirement() {}

// PermissionRequirement delegates each permission to the resolver and combines
// the answers: all must hold when RequireAll is set, otherwise any one
// suffices. Context pins the tenant scope ahead of request extraction.
type PermissionRequirement struct {
	Permissions []Permission
	RequireAll  bool
	Context     Context
}

func (PermissionRequirement) isRequirement() {}

// Registry maps operation names to their declared requirements. Operations are
// named "<group>.<action>"; a default registered for the group applies to every
// operation in it unless the operation declares its own requirement, which
// replaces the default outright. The registry is populated while routes are
// mounted and only read afterwards.
type Registry struct {
	mu     sync.RWMutex
	ops    map[string]Requirement
	groups map[string]Requirement
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:    make(map[string]Requirement),
		groups: make(map[string]Requirement),
	}
}

// Declare attaches a requirement to a single operation, replacing any group
// default for it.
func (r *Registry) Declare(operation string, req Requirement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[operation] = req
}

// DeclareGroup attaches a default requirement to every operation in a group.
func (r *Registry) DeclareGroup(group string, req Requirement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group] = req
}

// Lookup resolves the effective requirement for an operation. Operation-level
// declarations win over the group default; nil means the operation is public.
func (r *Registry) Lookup(operation string) Requirement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if req, ok := r.ops[operation]; ok {
		return req
	}
	if group, _, ok := strings.Cut(operation, "."); ok {
		if req, ok := r.groups[group]; ok {
			return req
		}
	}
	return nil
}
