package authz

// Role identifies an authority tier assigned to a user at provisioning time.
type Role string

// Platform tier.
const (
	RoleSuperAdmin    Role = "super_admin"
	RolePlatformAdmin Role = "platform_admin"
)

// Business ownership tier.
const (
	RoleOwner         Role = "owner"
	RoleBusinessAdmin Role = "business_admin"
)

// Management tier.
const (
	RoleLocationManager Role = "location_manager"
	RoleDepartmentHead  Role = "department_head"
)

// Practitioner tier.
const (
	RoleSeniorPractitioner Role = "senior_practitioner"
	RolePractitioner       Role = "practitioner"
	RoleJuniorPractitioner Role = "junior_practitioner"
)

// Support tier.
const (
	RoleScheduler    Role = "scheduler"
	RoleReceptionist Role = "receptionist"
	RoleAssistant    Role = "assistant"
)

// Client tier.
const (
	RoleVIPClient       Role = "vip_client"
	RoleCorporateClient Role = "corporate_client"
	RoleRegularClient   Role = "regular_client"
	RoleGuestClient     Role = "guest_client"
)

// roleLevels ranks every role by authority. The table is fixed at compile time
// and read-only afterwards, so concurrent lookups need no locking.
var roleLevels = map[Role]int{
	RoleSuperAdmin:    100,
	RolePlatformAdmin: 90,

	RoleOwner:         80,
	RoleBusinessAdmin: 70,

	RoleLocationManager: 60,
	RoleDepartmentHead:  55,

	RoleSeniorPractitioner: 50,
	RolePractitioner:       45,
	RoleJuniorPractitioner: 40,

	RoleScheduler:    30,
	RoleReceptionist: 20,
	RoleAssistant:    15,

	RoleVIPClient:       12,
	RoleCorporateClient: 10,
	RoleRegularClient:   8,
	RoleGuestClient:     5,
}

// LevelOf returns the authority level for a role. Unknown roles rank at 0 so
// that malformed input is denied by default.
func LevelOf(role Role) int {
	return roleLevels[role]
}

// IsValidRole reports whether the role is part of the closed enumeration.
func IsValidRole(role Role) bool {
	_, ok := roleLevels[role]
	return ok
}

// AllRoles returns the closed role enumeration.
func AllRoles() []Role {
	roles := make([]Role, 0, len(roleLevels))
	for r := range roleLevels {
		roles = append(roles, r)
	}
	return roles
}

// TenantExempt reports whether the role bypasses tenant isolation. Only the two
// platform tiers act across business boundaries.
func TenantExempt(role Role) bool {
	return role == RoleSuperAdmin || role == RolePlatformAdmin
}

// Dominates reports whether the candidate role outranks at least the weakest of
// the required roles. A required set reads as "any one of these suffices", so
// the candidate only has to meet the minimum level among them, not the maximum.
func Dominates(candidate Role, required []Role) bool {
	if len(required) == 0 {
		return false
	}
	min := -1
	for _, r := range required {
		level := LevelOf(r)
		if min == -1 || level < min {
			min = level
		}
	}
	return LevelOf(candidate) >= min
}
