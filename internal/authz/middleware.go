package authz

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slotwise/slotwise/internal/platform/httpx"
)

// maxContextBodyPeek caps how much of a request body is read while looking
// for tenant-scope fields.
const maxContextBodyPeek = 1 << 20

// Middleware adapts the guards to chi handlers: it extracts the tenant scope
// from the request, runs the composed guard chain and translates denials into
// problem responses.
type Middleware struct {
	Registry *Registry
	Logger   *slog.Logger

	chain *Chain
}

// NewMiddleware wires the standard chain: role guard first, then permission
// guard, both reading from the same registry.
func NewMiddleware(registry *Registry, resolver PermissionResolver, logger *slog.Logger) Middleware {
	return Middleware{
		Registry: registry,
		Logger:   logger,
		chain: NewChain(
			NewRoleGuard(registry, logger),
			NewPermissionGuard(registry, resolver, logger),
		),
	}
}

// Protect guards the wrapped handler with the requirement declared for the
// named operation. Operations without a declaration pass everyone through.
func (m Middleware) Protect(operation string) func(http.Handler) http.Handler {
	return m.guardFunc(func(r *http.Request) Access {
		return Access{
			Operation: operation,
			Identity:  IdentityFromContext(r.Context()),
			Target:    ExtractContext(r),
		}
	}, m.chain)
}

// RequireLevel guards the wrapped handler with a bare hierarchy threshold.
func (m Middleware) RequireLevel(level int) func(http.Handler) http.Handler {
	chain := NewChain(MinLevelGuard{Level: level})
	return m.guardFunc(func(r *http.Request) Access {
		return Access{Identity: IdentityFromContext(r.Context()), Target: ExtractContext(r)}
	}, chain)
}

// RequireBusinessAccess guards the wrapped handler with a tenant-membership
// check against the business targeted by the request.
func (m Middleware) RequireBusinessAccess(resolver PermissionResolver) func(http.Handler) http.Handler {
	chain := NewChain(NewBusinessAccessGuard(resolver, m.Logger))
	return m.guardFunc(func(r *http.Request) Access {
		return Access{Identity: IdentityFromContext(r.Context()), Target: ExtractContext(r)}
	}, chain)
}

func (m Middleware) guardFunc(build func(*http.Request) Access, chain *Chain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := chain.Authorize(r.Context(), build(r)); err != nil {
				respondDenied(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondDenied(w http.ResponseWriter, err error) {
	if IsAuthentication(err) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return
	}
	httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
}

// contextBody is the subset of a JSON request body consulted for tenant scope.
type contextBody struct {
	BusinessID      string `json:"business_id"`
	LocationID      string `json:"location_id"`
	DepartmentID    string `json:"department_id"`
	ResourceOwnerID string `json:"resource_owner_id"`
}

// ExtractContext pulls the tenant scope out of a request. Route parameters win
// over body fields, per field; the body is restored so handlers can decode it
// again.
func ExtractContext(r *http.Request) Context {
	scope := Context{
		BusinessID:      chi.URLParam(r, "businessID"),
		LocationID:      chi.URLParam(r, "locationID"),
		DepartmentID:    chi.URLParam(r, "departmentID"),
		ResourceOwnerID: chi.URLParam(r, "ownerID"),
	}
	if scope.BusinessID != "" && scope.LocationID != "" && scope.DepartmentID != "" && scope.ResourceOwnerID != "" {
		return scope
	}
	if body := peekBody(r); body != nil {
		scope = scope.merge(Context{
			BusinessID:      body.BusinessID,
			LocationID:      body.LocationID,
			DepartmentID:    body.DepartmentID,
			ResourceOwnerID: body.ResourceOwnerID,
		})
	}
	return scope
}

func peekBody(r *http.Request) *contextBody {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	orig := r.Body
	raw, err := io.ReadAll(io.LimitReader(orig, maxContextBodyPeek))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), orig), orig}
	if err != nil || len(raw) == 0 {
		return nil
	}
	var body contextBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return &body
}
