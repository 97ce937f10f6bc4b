package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/slotwise/slotwise/internal/authz"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service is the permission resolution collaborator: it answers the guards'
// capability and membership questions and manages grants.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// HasPermission reports whether the user holds the permission in the scope.
func (s *Service) HasPermission(ctx context.Context, userID int64, permission authz.Permission, scope authz.Context) (bool, error) {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false, nil
	}
	return s.repo.GrantExists(ctx, userID, normalized, scope)
}

// HasAccessToBusiness reports whether the user has any membership in the business.
func (s *Service) HasAccessToBusiness(ctx context.Context, userID int64, businessID string) (bool, error) {
	if businessID == "" {
		return false, nil
	}
	return s.repo.MembershipExists(ctx, userID, businessID)
}

// ListGrants returns every grant held by the user.
func (s *Service) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	return s.repo.ListGrants(ctx, userID)
}

// Grant records a permission grant for a user.
func (s *Service) Grant(ctx context.Context, grant Grant) (Grant, error) {
	grant.Permission = normalizePermission(grant.Permission)
	if grant.Permission == "" {
		return Grant{}, errors.New("rbac: permission required")
	}
	if grant.UserID == 0 {
		return Grant{}, errors.New("rbac: user required")
	}
	return s.repo.InsertGrant(ctx, grant)
}

// Revoke removes a grant by ID. Returns ErrNotFound when nothing was deleted.
func (s *Service) Revoke(ctx context.Context, id int64) error {
	rows, err := s.repo.DeleteGrant(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMembership records that a user belongs to a business with a role.
func (s *Service) AddMembership(ctx context.Context, m Membership) error {
	if m.UserID == 0 || m.BusinessID == "" {
		return errors.New("rbac: user and business required")
	}
	if !authz.IsValidRole(m.Role) {
		return errors.New("rbac: unknown role")
	}
	return s.repo.InsertMembership(ctx, m)
}

// RemoveMembership removes a user from a business.
func (s *Service) RemoveMembership(ctx context.Context, userID int64, businessID string) error {
	rows, err := s.repo.DeleteMembership(ctx, userID, businessID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizePermission(p authz.Permission) authz.Permission {
	return authz.Permission(strings.TrimSpace(strings.ToLower(string(p))))
}

var _ authz.PermissionResolver = (*Service)(nil)
