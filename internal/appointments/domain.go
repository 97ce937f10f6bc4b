package appointments

import (
	"errors"
	"time"
)

// Appointment statuses. Cancelled slots no longer block the calendar.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var (
	// ErrSlotTaken means the staff member already has an overlapping booking.
	ErrSlotTaken = errors.New("appointments: slot already taken")
	// ErrDuplicateRequest means the idempotency key was already used.
	ErrDuplicateRequest = errors.New("appointments: duplicate booking request")
	// ErrAlreadyCancelled means the appointment is not in a cancellable state.
	ErrAlreadyCancelled = errors.New("appointments: already cancelled")
	// ErrInvalidSlot covers malformed time ranges.
	ErrInvalidSlot = errors.New("appointments: invalid time slot")
)

// Appointment is a booked slot between a client and a staff member.
type Appointment struct {
	ID         string
	BusinessID string
	LocationID string
	OfferingID string
	ClientID   int64
	StaffID    int64
	StartsAt   time.Time
	EndsAt     time.Time
	Status     string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Cancellable reports whether the appointment can still be cancelled.
func (a Appointment) Cancellable() bool {
	return a.Status == StatusBooked
}
