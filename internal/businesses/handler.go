package businesses

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

// Handler wires business profile endpoints.
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

// MountRoutes registers business routes and their authorization declarations.
func (h *Handler) MountRoutes(r chi.Router) {
	reg := h.guard.Registry
	reg.Declare("businesses.create", authz.RoleRequirement{Roles: []authz.Role{authz.RoleSuperAdmin, authz.RolePlatformAdmin}})
	reg.Declare("businesses.update", authz.RoleRequirement{Roles: []authz.Role{authz.RoleOwner, authz.RoleBusinessAdmin}})
	reg.Declare("businesses.delete", authz.RoleRequirement{Roles: []authz.Role{authz.RoleOwner}})

	r.Get("/", h.list)
	r.Get("/{businessID}", h.get)
	r.With(h.guard.Protect("businesses.create")).Post("/", h.create)
	r.With(h.guard.Protect("businesses.update")).Put("/{businessID}", h.update)
	r.With(h.guard.Protect("businesses.delete")).Delete("/{businessID}", h.delete)
}

type businessRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Sector   string `json:"sector" validate:"max=60"`
	Timezone string `json:"timezone" validate:"omitempty,max=60"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
}

type businessResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sector   string `json:"sector,omitempty"`
	Timezone string `json:"timezone"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
}

func toResponse(b Business) businessResponse {
	return businessResponse{
		ID:       b.ID,
		Name:     b.Name,
		Sector:   b.Sector,
		Timezone: b.Timezone,
		Phone:    b.Phone,
		Email:    b.Email,
		IsActive: b.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	items, total, err := h.service.List(r.Context(), shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	out := make([]businessResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toResponse(b))
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{
		Data:       out,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      pagination.Total,
		TotalPages: pagination.TotalPages,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "businessID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*b))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	created, err := h.service.Create(r.Context(), actor.ID, Business{
		Name:     req.Name,
		Sector:   req.Sector,
		Timezone: req.Timezone,
		Phone:    req.Phone,
		Email:    req.Email,
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
	actor := authz.IdentityFromContext(r.Context())
	b := Business{
		ID:       chi.URLParam(r, "businessID"),
		Name:     req.Name,
		Sector:   req.Sector,
		Timezone: req.Timezone,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	updated, err := h.service.Update(r.Context(), actor.ID, b)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor := authz.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor.ID, chi.URLParam(r, "businessID")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (businessRequest, bool) {
	var req businessRequest
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "business not found")
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("businesses handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
