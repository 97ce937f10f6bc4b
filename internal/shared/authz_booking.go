package shared

import "github.com/slotwise/slotwise/internal/authz"

// Booking permissions declared for the appointments module.
const (
	PermBookingAny     authz.Permission = "booking.any"
	PermBookingOwn     authz.Permission = "booking.own"
	PermBookingCancel  authz.Permission = "booking.cancel"
	PermCalendarView   authz.Permission = "calendar.view"
	PermCalendarManage authz.Permission = "calendar.manage"
	PermScheduleSelf   authz.Permission = "schedule.self"
)

// BookingScopes lists all permissions related to booking.
func BookingScopes() []authz.Permission {
	return []authz.Permission{
		PermBookingAny,
		PermBookingOwn,
		PermBookingCancel,
		PermCalendarView,
		PermCalendarManage,
		PermScheduleSelf,
	}
}
