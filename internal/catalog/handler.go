package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/httpx"
	"github.com/slotwise/slotwise/internal/shared"
)

// Handler wires catalog endpoints. Routes are mounted under a business:
// /businesses/{businessID}/catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers catalog routes. Every write in the group shares the
// same group-level declaration; reads stay public.
func (h *Handler) MountRoutes(r chi.Router) {
	h.guard.Registry.DeclareGroup("catalog", authz.RoleRequirement{Roles: []authz.Role{authz.RoleBusinessAdmin}})

	r.Get("/", h.list)
	r.Get("/{offeringID}", h.get)
	r.With(h.guard.Protect("catalog.create")).Post("/", h.create)
	r.With(h.guard.Protect("catalog.update")).Put("/{offeringID}", h.update)
	r.With(h.guard.Protect("catalog.delete")).Delete("/{offeringID}", h.delete)
}

type offeringRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
	DurationMin int    `json:"duration_min" validate:"required,gt=0,lte=480"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	IsActive    *bool  `json:"is_active"`
}

type offeringResponse struct {
	ID          string `json:"id"`
	BusinessID  string `json:"business_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	IsActive    bool   `json:"is_active"`
}

func toResponse(o Offering) offeringResponse {
	return offeringResponse{
		ID:          o.ID,
		BusinessID:  o.BusinessID,
		Name:        o.Name,
		Description: o.Description,
		DurationMin: o.DurationMin,
		PriceCents:  o.PriceCents,
		Currency:    o.Currency,
		IsActive:    o.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	activeOnly := r.URL.Query().Get("include_inactive") != "1"
	items, err := h.service.ListByBusiness(r.Context(), businessID, activeOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]offeringResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toResponse(o))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "offeringID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*o))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), Offering{
		BusinessID:  chi.URLParam(r, "businessID"),
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), Offering{
		ID:          chi.URLParam(r, "offeringID"),
		BusinessID:  chi.URLParam(r, "businessID"),
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "offeringID"), chi.URLParam(r, "businessID")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (offeringRequest, bool) {
	var req offeringRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "offering not found")
	default:
		if h.logger != nil {
			h.logger.Error("catalog handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
