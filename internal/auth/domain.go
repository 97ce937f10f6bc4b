package auth

import (
	"time"

	"github.com/slotwise/slotwise/internal/authz"
)

// User represents a user account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         authz.Role
	BusinessID   string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity converts the account into the request-scoped identity the guards
// consume.
func (u *User) Identity() *authz.Identity {
	return &authz.Identity{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		BusinessID: u.BusinessID,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
	}
}
