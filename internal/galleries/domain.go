package galleries

import "time"

// Image is gallery metadata for a business; binaries live in object storage
// and are referenced by URL only.
type Image struct {
	ID         string
	BusinessID string
	Title      string
	Caption    string
	URL        string
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
