package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Authentication failures. These map to 401: the caller has not proven who
// they are.
var ErrAuthenticationRequired = errors.New("authz: authentication required")

// Authorization failures. These map to 403: the caller is known but denied.
var (
	ErrAccountInactive   = errors.New("authz: account is inactive")
	ErrAccountUnverified = errors.New("authz: account is not verified")
	ErrCrossTenantAccess = errors.New("authz: cross-tenant access denied")
)

// InsufficientRoleError reports a failed role check together with the roles
// that would have satisfied it.
type InsufficientRoleError struct {
	Required []Role
}

func (e *InsufficientRoleError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return fmt.Sprintf("authz: insufficient role, requires one of: %s", strings.Join(names, ", "))
}

// InsufficientPermissionError reports a failed permission check together with
// every permission that was evaluated.
type InsufficientPermissionError struct {
	Checked    []Permission
	RequireAll bool
}

func (e *InsufficientPermissionError) Error() string {
	names := make([]string, len(e.Checked))
	for i, p := range e.Checked {
		names[i] = string(p)
	}
	mode := "any of"
	if e.RequireAll {
		mode = "all of"
	}
	return fmt.Sprintf("authz: insufficient permission, requires %s: %s", mode, strings.Join(names, ", "))
}

// InsufficientLevelError reports a failed numeric hierarchy threshold check.
type InsufficientLevelError struct {
	Required int
	Actual   int
}

func (e *InsufficientLevelError) Error() string {
	return fmt.Sprintf("authz: insufficient hierarchy level %d, requires at least %d", e.Actual, e.Required)
}

// IsAuthentication reports whether err is an authentication failure as opposed
// to an authorization one. Clients redirect to login on the former and show an
// access-denied page on the latter, so the split is part of the contract.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired)
}
