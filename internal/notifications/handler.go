package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/platform/httpx"
	"github.com/slotwise/slotwise/internal/shared"
	"github.com/slotwise/slotwise/jobs"
)

// MailQueue enqueues outbound email tasks.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Handler wires notification preference and dispatch endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mail      MailQueue
	guard     authz.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, mail MailQueue, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mail: mail, guard: guard, validator: validator.New()}
}

// MountRoutes registers notification routes. Preferences are self-service for
// any signed-in tier; ad-hoc sends are permission-gated.
func (h *Handler) MountRoutes(r chi.Router) {
	reg := h.guard.Registry
	reg.Declare("notifications.preferences", authz.RoleRequirement{Roles: []authz.Role{authz.RoleGuestClient}})
	reg.Declare("notifications.send", authz.PermissionRequirement{
		Permissions: []authz.Permission{shared.PermNotificationsSend},
	})

	r.With(h.guard.Protect("notifications.preferences")).Get("/preferences", h.getPreferences)
	r.With(h.guard.Protect("notifications.preferences")).Put("/preferences", h.savePreferences)
	r.With(h.guard.Protect("notifications.send")).Post("/send", h.send)
}

type preferencesRequest struct {
	EmailEnabled     bool `json:"email_enabled"`
	SMSEnabled       bool `json:"sms_enabled"`
	RemindersEnabled bool `json:"reminders_enabled"`
}

type preferencesResponse struct {
	EmailEnabled     bool `json:"email_enabled"`
	SMSEnabled       bool `json:"sms_enabled"`
	RemindersEnabled bool `json:"reminders_enabled"`
}

type sendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	actor := authz.IdentityFromContext(r.Context())
	prefs, err := h.service.Preferences(r.Context(), actor.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, preferencesResponse{
		EmailEnabled:     prefs.EmailEnabled,
		SMSEnabled:       prefs.SMSEnabled,
		RemindersEnabled: prefs.RemindersEnabled,
	})
}

func (h *Handler) savePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	err := h.service.SavePreferences(r.Context(), Preference{
		UserID:           actor.ID,
		EmailEnabled:     req.EmailEnabled,
		SMSEnabled:       req.SMSEnabled,
		RemindersEnabled: req.RemindersEnabled,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	_, err := h.mail.EnqueueSendEmail(r.Context(), jobs.SendEmailPayload{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "preferences not found")
	default:
		if h.logger != nil {
			h.logger.Error("notifications handler", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
