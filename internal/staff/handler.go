package staff

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/httpx"
	"github.com/slotwise/slotwise/internal/rbac"
	"github.com/slotwise/slotwise/internal/shared"
)

// Handler wires staff roster and grant management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers staff routes and their authorization declarations.
// Role assignment and grant management are permission-gated rather than
// role-gated: a business_admin without both capabilities is still refused.
func (h *Handler) MountRoutes(r chi.Router) {
	reg := h.guard.Registry
	reg.DeclareGroup("staff", authz.RoleRequirement{Roles: []authz.Role{authz.RoleBusinessAdmin}})
	reg.Declare("staff.assign_role", authz.PermissionRequirement{
		Permissions: []authz.Permission{shared.PermStaffManage, shared.PermRolesAssign},
		RequireAll:  true,
	})
	reg.Declare("staff.list", authz.PermissionRequirement{
		Permissions: []authz.Permission{shared.PermStaffView, shared.PermStaffManage},
	})
	reg.Declare("staff.grants", authz.PermissionRequirement{
		Permissions: []authz.Permission{shared.PermGrantsView},
	})

	r.With(h.guard.Protect("staff.list")).Get("/", h.list)
	r.With(h.guard.Protect("staff.list")).Get("/{userID}", h.get)
	r.With(h.guard.Protect("staff.add")).Post("/", h.add)
	r.With(h.guard.Protect("staff.assign_role")).Put("/{userID}/role", h.assignRole)
	r.With(h.guard.Protect("staff.remove")).Delete("/{userID}", h.remove)
	r.With(h.guard.Protect("staff.grants")).Get("/{userID}/grants", h.listGrants)
	r.With(h.guard.Protect("staff.assign_role")).Post("/{userID}/grants", h.grant)
	r.With(h.guard.Protect("staff.assign_role")).Delete("/{userID}/grants/{grantID}", h.revokeGrant)
}

type memberRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,min=2,max=120"`
	Email  string `json:"email" validate:"required,email"`
	Title  string `json:"title" validate:"max=80"`
	Role   string `json:"role" validate:"required"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type grantRequest struct {
	Permission   string `json:"permission" validate:"required"`
	LocationID   string `json:"location_id" validate:"omitempty,max=64"`
	DepartmentID string `json:"department_id" validate:"omitempty,max=64"`
}

type memberResponse struct {
	UserID     int64  `json:"user_id"`
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title,omitempty"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

type grantResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Permission   string `json:"permission"`
	BusinessID   string `json:"business_id,omitempty"`
	LocationID   string `json:"location_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		UserID:     m.UserID,
		BusinessID: m.BusinessID,
		Name:       m.Name,
		Email:      m.Email,
		Title:      m.Title,
		Role:       string(m.Role),
		IsActive:   m.IsActive,
	}
}

func toGrantResponse(g rbac.Grant) grantResponse {
	return grantResponse{
		ID:           g.ID,
		UserID:       g.UserID,
		Permission:   string(g.Permission),
		BusinessID:   g.BusinessID,
		LocationID:   g.LocationID,
		DepartmentID: g.DepartmentID,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	page, perPage := shared.PageFromRequest(r)
	items, total, err := h.service.ListByBusiness(r.Context(), businessID, shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.respondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	out := make([]memberResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMemberResponse(m))
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
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "businessID"), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberResponse(*m))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	created, err := h.service.Add(r.Context(), actor.ID, Member{
		UserID:     req.UserID,
		BusinessID: chi.URLParam(r, "businessID"),
		Name:       req.Name,
		Email:      req.Email,
		Title:      req.Title,
		Role:       authz.Role(req.Role),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMemberResponse(*created))
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	var req assignRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	err := h.service.AssignRole(r.Context(), actor.ID, chi.URLParam(r, "businessID"), userID, authz.Role(req.Role))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	if err := h.service.Remove(r.Context(), actor.ID, chi.URLParam(r, "businessID"), userID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	grants, err := h.service.Grants(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrantResponse(g))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	var req grantRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	created, err := h.service.GrantPermission(r.Context(), actor.ID, rbac.Grant{
		UserID:       userID,
		Permission:   authz.Permission(req.Permission),
		BusinessID:   chi.URLParam(r, "businessID"),
		LocationID:   req.LocationID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toGrantResponse(created))
}

func (h *Handler) revokeGrant(w http.ResponseWriter, r *http.Request) {
	grantID, err := strconv.ParseInt(chi.URLParam(r, "grantID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid grant id")
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	if err := h.service.RevokePermission(r.Context(), actor.ID, chi.URLParam(r, "businessID"), grantID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return 0, false
	}
	return userID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "staff member not found")
	case errors.Is(err, ErrUnknownRole), errors.Is(err, ErrUnknownPermission):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("staff handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
