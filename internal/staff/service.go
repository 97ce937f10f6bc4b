package staff

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/rbac"
	"github.com/slotwise/slotwise/internal/shared"
)

var (
	ErrUnknownRole       = errors.New("staff: unknown role")
	ErrUnknownPermission = errors.New("staff: unknown permission")
)

// knownPermissions is the union of every permission a grant may carry.
var knownPermissions = func() map[authz.Permission]struct{} {
	m := map[authz.Permission]struct{}{}
	for _, scope := range [][]authz.Permission{shared.CoreScopes(), shared.BookingScopes(), shared.CatalogScopes()} {
		for _, p := range scope {
			m[p] = struct{}{}
		}
	}
	return m
}()

// Service manages staff rosters. Memberships are kept in lockstep with the
// rbac tables so the guards see the same picture the roster shows.
type Service struct {
	repo  Repository
	rbac  *rbac.Service
	audit *shared.AuditLogger
}

func NewService(repo Repository, rbacSvc *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, rbac: rbacSvc, audit: audit}
}

func (s *Service) Get(ctx context.Context, businessID string, userID int64) (*Member, error) {
	return s.repo.Get(ctx, businessID, userID)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string, page shared.Pagination) ([]Member, int, error) {
	return s.repo.ListByBusiness(ctx, businessID, page)
}

// Add enrols a member and records the matching business membership.
func (s *Service) Add(ctx context.Context, actorID int64, m Member) (*Member, error) {
	if !authz.IsValidRole(m.Role) {
		return nil, ErrUnknownRole
	}
	now := time.Now().UTC()
	m.IsActive = true
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.rbac.AddMembership(ctx, rbac.Membership{
		UserID:     m.UserID,
		BusinessID: m.BusinessID,
		Role:       m.Role,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, &m); err != nil {
		// Roll the membership back so the guards never see a member the
		// roster does not know about.
		_ = s.rbac.RemoveMembership(ctx, m.UserID, m.BusinessID)
		return nil, err
	}
	s.recordAudit(ctx, actorID, m.BusinessID, "staff.add", m.UserID)
	return &m, nil
}

// AssignRole changes a member's role on both the roster and the membership row.
func (s *Service) AssignRole(ctx context.Context, actorID int64, businessID string, userID int64, role authz.Role) error {
	if !authz.IsValidRole(role) {
		return ErrUnknownRole
	}
	rows, err := s.repo.UpdateRole(ctx, businessID, userID, role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	if err := s.rbac.RemoveMembership(ctx, userID, businessID); err != nil && !errors.Is(err, rbac.ErrNotFound) {
		return err
	}
	if err := s.rbac.AddMembership(ctx, rbac.Membership{UserID: userID, BusinessID: businessID, Role: role}); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, businessID, "staff.assign_role", userID)
	return nil
}

// Remove drops the member from the roster and revokes the membership.
func (s *Service) Remove(ctx context.Context, actorID int64, businessID string, userID int64) error {
	rows, err := s.repo.Delete(ctx, businessID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.ErrNotFound
	}
	if err := s.rbac.RemoveMembership(ctx, userID, businessID); err != nil && !errors.Is(err, rbac.ErrNotFound) {
		return err
	}
	s.recordAudit(ctx, actorID, businessID, "staff.remove", userID)
	return nil
}

// Grants exposes the rbac grant list for the member detail view.
func (s *Service) Grants(ctx context.Context, userID int64) ([]rbac.Grant, error) {
	return s.rbac.ListGrants(ctx, userID)
}

// GrantPermission issues a scoped permission grant. Only permissions from the
// declared scope catalogue are accepted.
func (s *Service) GrantPermission(ctx context.Context, actorID int64, grant rbac.Grant) (rbac.Grant, error) {
	normalized := authz.Permission(strings.TrimSpace(strings.ToLower(string(grant.Permission))))
	if _, ok := knownPermissions[normalized]; !ok {
		return rbac.Grant{}, ErrUnknownPermission
	}
	grant.Permission = normalized
	created, err := s.rbac.Grant(ctx, grant)
	if err != nil {
		return rbac.Grant{}, err
	}
	s.recordAudit(ctx, actorID, grant.BusinessID, "staff.grant", grant.UserID)
	return created, nil
}

// RevokePermission removes a grant.
func (s *Service) RevokePermission(ctx context.Context, actorID int64, businessID string, grantID int64) error {
	if err := s.rbac.Revoke(ctx, grantID); err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	s.recordAudit(ctx, actorID, businessID, "staff.revoke_grant", grantID)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, businessID, action string, subject int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:    actorID,
		BusinessID: businessID,
		Action:     action,
		Entity:     "staff",
		EntityID:   strconv.FormatInt(subject, 10),
		At:         time.Now().UTC(),
	})
}
