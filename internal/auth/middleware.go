package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/shared"
)

// IdentityLoader resolves the session's user into an authz.Identity attached
// to the request context. Requests without a usable session continue
// unauthenticated; the guards decide what that means per operation.
type IdentityLoader struct {
	Service *Service
	Logger  *slog.Logger
}

// Middleware returns the identity-loading middleware.
func (l IdentityLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(sess.User())
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Error("auth parse session user id", slog.String("value", raw))
			}
			next.ServeHTTP(w, r)
			return
		}
		user, err := l.Service.Lookup(r.Context(), userID)
		if err != nil {
			// Stale session for a deleted account: fall through unauthenticated.
			if l.Logger != nil {
				l.Logger.Warn("auth lookup session user", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := authz.ContextWithIdentity(r.Context(), user.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
