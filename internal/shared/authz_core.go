package shared

import "github.com/slotwise/slotwise/internal/authz"

// Core platform permissions.
const (
	PermBusinessesManage authz.Permission = "businesses.manage"
	PermBusinessesView   authz.Permission = "businesses.view"

	PermStaffManage authz.Permission = "staff.manage"
	PermStaffView   authz.Permission = "staff.view"

	PermRolesAssign authz.Permission = "roles.assign"
	PermGrantsView  authz.Permission = "grants.view"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []authz.Permission {
	return []authz.Permission{
		PermBusinessesManage,
		PermBusinessesView,
		PermStaffManage,
		PermStaffView,
		PermRolesAssign,
		PermGrantsView,
	}
}
