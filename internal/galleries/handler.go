package galleries

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

// Handler wires gallery metadata endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers gallery routes. Reads are public; writes default to
// the location_manager tier via the group declaration.
func (h *Handler) MountRoutes(r chi.Router) {
	h.guard.Registry.DeclareGroup("galleries", authz.RoleRequirement{Roles: []authz.Role{authz.RoleLocationManager}})

	r.Get("/", h.list)
	r.Get("/{imageID}", h.get)
	r.With(h.guard.Protect("galleries.create")).Post("/", h.create)
	r.With(h.guard.Protect("galleries.update")).Put("/{imageID}", h.update)
	r.With(h.guard.Protect("galleries.delete")).Delete("/{imageID}", h.delete)
}

type imageRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=120"`
	Caption   string `json:"caption" validate:"max=300"`
	URL       string `json:"url" validate:"required,url"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

type imageResponse struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	Title      string `json:"title"`
	Caption    string `json:"caption,omitempty"`
	URL        string `json:"url"`
	SortOrder  int    `json:"sort_order"`
}

func toResponse(img Image) imageResponse {
	return imageResponse{
		ID:         img.ID,
		BusinessID: img.BusinessID,
		Title:      img.Title,
		Caption:    img.Caption,
		URL:        img.URL,
		SortOrder:  img.SortOrder,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByBusiness(r.Context(), chi.URLParam(r, "businessID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]imageResponse, 0, len(items))
	for _, img := range items {
		out = append(out, toResponse(img))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.Get(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*img))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), Image{
		BusinessID: chi.URLParam(r, "businessID"),
		Title:      req.Title,
		Caption:    req.Caption,
		URL:        req.URL,
		SortOrder:  req.SortOrder,
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
	updated, err := h.service.Update(r.Context(), Image{
		ID:         chi.URLParam(r, "imageID"),
		BusinessID: chi.URLParam(r, "businessID"),
		Title:      req.Title,
		Caption:    req.Caption,
		URL:        req.URL,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "imageID")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (imageRequest, bool) {
	var req imageRequest
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "image not found")
	case errors.Is(err, ErrInvalidImage):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("galleries handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
