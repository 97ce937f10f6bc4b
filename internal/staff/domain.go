package staff

import (
	"time"

	"github.com/slotwise/slotwise/internal/authz"
)

// Member is a person working for a business, with their platform role.
type Member struct {
	UserID     int64
	BusinessID string
	Name       string
	Email      string
	Title      string
	Role       authz.Role
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
