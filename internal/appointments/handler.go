package appointments

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/httpx"
	"github.com/slotwise/slotwise/internal/shared"
)

// calendarMinLevel admits every staff tier from junior_practitioner up while
// keeping client tiers out of business calendars.
const calendarMinLevel = 40

// IdempotencyHeader carries the client-supplied booking key.
const IdempotencyHeader = "Idempotency-Key"

// Handler wires booking and calendar endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	resolver  authz.PermissionResolver
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware, resolver authz.PermissionResolver) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, resolver: resolver, validator: validator.New()}
}

// MountRoutes registers the client-facing booking routes. Booking is open to
// the regular_client tier; higher tiers pass through hierarchy dominance while
// guest_client stays below the threshold.
func (h *Handler) MountRoutes(r chi.Router) {
	reg := h.guard.Registry
	reg.Declare("appointments.book", authz.RoleRequirement{Roles: []authz.Role{authz.RoleRegularClient}})
	reg.Declare("appointments.list_own", authz.RoleRequirement{Roles: []authz.Role{authz.RoleGuestClient}})
	reg.Declare("appointments.cancel", authz.RoleRequirement{Roles: []authz.Role{authz.RoleGuestClient}})

	r.With(h.guard.Protect("appointments.book")).Post("/", h.book)
	r.With(h.guard.Protect("appointments.list_own")).Get("/", h.listOwn)
	r.With(h.guard.Protect("appointments.cancel")).Post("/{appointmentID}/cancel", h.cancel)
}

// MountCalendar registers the staff-facing business calendar. The route sits
// behind both a hierarchy floor and a tenant-membership check.
func (h *Handler) MountCalendar(r chi.Router) {
	r.With(
		h.guard.RequireLevel(calendarMinLevel),
		h.guard.RequireBusinessAccess(h.resolver),
	).Get("/", h.calendar)
}

type bookRequest struct {
	BusinessID string    `json:"business_id" validate:"required,max=64"`
	LocationID string    `json:"location_id" validate:"omitempty,max=64"`
	OfferingID string    `json:"offering_id" validate:"required,max=64"`
	StaffID    int64     `json:"staff_id" validate:"required,gt=0"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
	Notes      string    `json:"notes" validate:"max=500"`
}

type appointmentResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	LocationID string    `json:"location_id,omitempty"`
	OfferingID string    `json:"offering_id"`
	ClientID   int64     `json:"client_id"`
	StaffID    int64     `json:"staff_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID,
		BusinessID: a.BusinessID,
		LocationID: a.LocationID,
		OfferingID: a.OfferingID,
		ClientID:   a.ClientID,
		StaffID:    a.StaffID,
		StartsAt:   a.StartsAt,
		EndsAt:     a.EndsAt,
		Status:     a.Status,
		Notes:      a.Notes,
	}
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	actor := authz.IdentityFromContext(r.Context())
	booked, err := h.service.Book(r.Context(), r.Header.Get(IdempotencyHeader), Appointment{
		BusinessID: req.BusinessID,
		LocationID: req.LocationID,
		OfferingID: req.OfferingID,
		ClientID:   actor.ID,
		StaffID:    req.StaffID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*booked))
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	actor := authz.IdentityFromContext(r.Context())
	page, perPage := shared.PageFromRequest(r)
	items, total, err := h.service.ListOwn(r.Context(), actor.ID, shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{
		Data:       out,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      pagination.Total,
		TotalPages: pagination.TotalPages,
	})
}

// cancel lets a client cancel their own appointment; cancelling someone
// else's requires the booking.cancel capability in the appointment's tenant.
func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor := authz.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "appointmentID")

	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if appt.ClientID != actor.ID {
		allowed, err := h.resolver.HasPermission(r.Context(), actor.ID, shared.PermBookingCancel,
			authz.Context{BusinessID: appt.BusinessID, LocationID: appt.LocationID})
		if err != nil || !allowed {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "cannot cancel another client's appointment")
			return
		}
	}

	cancelled, err := h.service.Cancel(r.Context(), actor.ID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*cancelled))
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	from, to, err := calendarRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	items, err := h.service.Calendar(r.Context(), businessID, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// calendarRange parses ?from=&to= RFC3339 bounds, defaulting to the next 7 days.
func calendarRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 0, 7)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from timestamp")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to timestamp")
		}
		to = parsed
	}
	return from, to, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "appointment not found")
	case errors.Is(err, ErrSlotTaken):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDuplicateRequest):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrAlreadyCancelled):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidSlot):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("appointments handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
