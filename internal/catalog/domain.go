package catalog

import "time"

// Offering is a bookable service a business sells (a haircut, a consult).
type Offering struct {
	ID          string
	BusinessID  string
	Name        string
	Description string
	DurationMin int
	PriceCents  int64
	Currency    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
