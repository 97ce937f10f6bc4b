package businesses

import "time"

// Business is a tenant on the platform.
type Business struct {
	ID          string
	Name        string
	Sector      string
	Timezone    string
	Phone       string
	Email       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
