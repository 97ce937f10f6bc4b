package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/slotwise/slotwise/internal/auth"
	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/shared"
	_ "github.com/slotwise/slotwise/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	return auth.NewHandler(nil, auth.NewService(repo), sessions, csrf), sessions
}

func hashedUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{
		ID:           1,
		Email:        "owner@test.local",
		PasswordHash: string(hashed),
		Role:         authz.RoleOwner,
		BusinessID:   "biz-123",
		IsActive:     true,
		IsVerified:   true,
	}
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	handler.MountRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if err := sessions.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{user: hashedUser(t, "correctpass")})

	res := doLogin(t, handler, sessions, `{"email":"owner@test.local","password":"wrongpass123"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.Code, res.Body.String())
	}
}

func TestLoginValidationFailure(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{})

	res := doLogin(t, handler, sessions, `{"email":"not-an-email","password":"short"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLoginSuccessIssuesCSRFToken(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{user: hashedUser(t, "correctpass")})

	res := doLogin(t, handler, sessions, `{"email":"owner@test.local","password":"correctpass"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		UserID    int64  `json:"user_id"`
		Role      string `json:"role"`
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 1 || payload.Role != "owner" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.CSRFToken == "" {
		t.Fatalf("expected csrf token in login response")
	}
}

func TestIdentityLoaderAttachesIdentity(t *testing.T) {
	user := hashedUser(t, "correctpass")
	loader := auth.IdentityLoader{Service: auth.NewService(&stubRepo{user: user})}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUser("1")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	var got *authz.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = authz.IdentityFromContext(r.Context())
	})
	loader.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatalf("expected identity in context")
	}
	if got.ID != 1 || got.Role != authz.RoleOwner || got.BusinessID != "biz-123" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestIdentityLoaderSkipsAnonymous(t *testing.T) {
	loader := auth.IdentityLoader{Service: auth.NewService(&stubRepo{})}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var got *authz.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = authz.IdentityFromContext(r.Context())
	})
	loader.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)

	if got != nil {
		t.Fatalf("expected no identity, got %+v", got)
	}
}
