package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGuard struct {
	name string
	err  error
	log  *[]string
}

func (g recordingGuard) Authorize(ctx context.Context, access Access) error {
	*g.log = append(*g.log, g.name)
	return g.err
}

func TestChainShortCircuitsOnFirstDeny(t *testing.T) {
	var calls []string
	deny := errors.New("deny")
	chain := NewChain(
		recordingGuard{name: "first", log: &calls},
		recordingGuard{name: "second", err: deny, log: &calls},
		recordingGuard{name: "third", log: &calls},
	)

	err := chain.Authorize(context.Background(), Access{})
	require.ErrorIs(t, err, deny)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestChainMovesIdentityCheckFirst(t *testing.T) {
	var calls []string
	chain := NewChain(
		recordingGuard{name: "authorization", log: &calls},
		RequireIdentity{},
	)

	// No identity: the chain fails before the authorization guard runs,
	// regardless of the order guards were passed in.
	err := chain.Authorize(context.Background(), Access{})
	require.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Empty(t, calls)

	calls = nil
	err = chain.Authorize(context.Background(), Access{Identity: activeIdentity(RoleOwner, "biz-123")})
	require.NoError(t, err)
	assert.Equal(t, []string{"authorization"}, calls)
}

func TestRequireIdentityHealth(t *testing.T) {
	guard := RequireIdentity{}

	require.ErrorIs(t, guard.Authorize(context.Background(), Access{}), ErrAuthenticationRequired)

	inactive := activeIdentity(RoleOwner, "biz-123")
	inactive.IsActive = false
	require.ErrorIs(t, guard.Authorize(context.Background(), Access{Identity: inactive}), ErrAccountInactive)

	unverified := activeIdentity(RoleOwner, "biz-123")
	unverified.IsVerified = false
	require.ErrorIs(t, guard.Authorize(context.Background(), Access{Identity: unverified}), ErrAccountUnverified)

	assert.NoError(t, guard.Authorize(context.Background(), Access{Identity: activeIdentity(RoleGuestClient, "biz-123")}))
}
