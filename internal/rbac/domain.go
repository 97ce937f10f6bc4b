package rbac

import (
	"time"

	"github.com/slotwise/slotwise/internal/authz"
)

// Grant ties a fine-grained permission to a user within a tenant scope. An
// empty BusinessID means the grant applies platform-wide.
type Grant struct {
	ID           int64
	UserID       int64
	Permission   authz.Permission
	BusinessID   string
	LocationID   string
	DepartmentID string
	CreatedAt    time.Time
}

// Membership records that a user belongs to a business.
type Membership struct {
	UserID     int64
	BusinessID string
	Role       authz.Role
	CreatedAt  time.Time
}
