package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/httpx"
	"github.com/slotwise/slotwise/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	UserID     int64      `json:"user_id"`
	Email      string     `json:"email"`
	Role       authz.Role `json:"role"`
	BusinessID string     `json:"business_id,omitempty"`
	CSRFToken  string     `json:"csrf_token,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		if h.logger != nil {
			h.logger.Warn("auth register session", slog.Any("error", err))
		}
	}
	if h.logger != nil {
		h.logger.Info("auth login", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	}

	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		BusinessID: user.BusinessID,
		CSRFToken:  csrfToken,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.NoContent(w)
		return
	}
	if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil && h.logger != nil {
		h.logger.Warn("auth remove session", slog.Any("error", err))
	}
	h.sessionManager.Destroy(sess)
	httpx.NoContent(w)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := authz.IdentityFromContext(r.Context())
	if id == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not authenticated")
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:     id.ID,
		Email:      id.Email,
		Role:       id.Role,
		BusinessID: id.BusinessID,
	})
}
