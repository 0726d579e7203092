package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/token"
	"github.com/jrsteele09/go-salvage-market/token/keys"
	refreshrepofake "github.com/jrsteele09/go-salvage-market/token/refresh/repofake"
	"github.com/jrsteele09/go-salvage-market/users"
	fakeuserrepo "github.com/jrsteele09/go-salvage-market/users/repofake"
)

type testTokenConfig struct{}

func (testTokenConfig) GetAccessTokenExpiry() time.Duration      { return time.Hour }
func (testTokenConfig) GetRefreshTokenExpiry() time.Duration     { return 24 * time.Hour }
func (testTokenConfig) GetRefreshTokenLength() int               { return 32 }
func (testTokenConfig) GetSessionRenewalInterval() time.Duration { return 50 * time.Minute }

func setup(t *testing.T, now *time.Time) (*token.Manager, users.UserRepo, *users.User) {
	t.Helper()
	userRepo := fakeuserrepo.NewFakeUserRepo()
	user := &users.User{ID: "u1", Email: "admin@test.com", Role: users.RoleAdmin, IsActive: true}
	require.NoError(t, userRepo.Upsert(user))

	options := []token.ManagerOption{token.WithIssuer("salvage-market")}
	if now != nil {
		options = append(options, token.WithNowFunc(func() time.Time { return *now }))
	}
	m := token.New(keys.NewHMACSigner("test-secret"), refreshrepofake.NewFakeRefreshTokenRepo(), userRepo, testTokenConfig{}, options...)
	return m, userRepo, user
}

func TestIssueAndIntrospect(t *testing.T) {
	m, _, user := setup(t, nil)

	resp, err := m.Issue(user)
	require.NoError(t, err)
	require.Equal(t, "ADMIN", resp.Role)
	require.Equal(t, "admin@test.com", resp.Email)
	require.Equal(t, 3600, resp.ExpiresIn)
	require.NotEmpty(t, resp.RefreshToken)

	info, err := m.Introspection(resp.AccessToken)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, "u1", info.Sub)
	require.Equal(t, "ADMIN", info.Role)
	require.Equal(t, "salvage-market", info.Iss)
	require.NotEmpty(t, info.Jti)
}

func TestIntrospectRejectsForeignSignature(t *testing.T) {
	m, userRepo, user := setup(t, nil)
	other := token.New(keys.NewHMACSigner("other"), refreshrepofake.NewFakeRefreshTokenRepo(), userRepo, testTokenConfig{})
	resp, err := other.Issue(user)
	require.NoError(t, err)

	info, err := m.Introspection(resp.AccessToken)
	require.Error(t, err)
	require.False(t, info.Active)
}

func TestExpiredAccessTokenIsInactive(t *testing.T) {
	now := time.Now()
	m, _, user := setup(t, &now)
	resp, err := m.Issue(user)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	info, err := m.Introspection(resp.AccessToken)
	require.NoError(t, err)
	require.False(t, info.Active)
}

func TestRefreshRotates(t *testing.T) {
	m, _, user := setup(t, nil)
	resp, err := m.Issue(user)
	require.NoError(t, err)

	next, err := m.Refresh(resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.RefreshToken, next.RefreshToken)

	_, err = m.Refresh(resp.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}

func TestRefreshInactiveUser(t *testing.T) {
	m, userRepo, user := setup(t, nil)
	resp, err := m.Issue(user)
	require.NoError(t, err)
	require.NoError(t, userRepo.SetActive(user.Email, false))

	_, err = m.Refresh(resp.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}

func TestRevokeAccessToken(t *testing.T) {
	m, _, user := setup(t, nil)
	resp, err := m.Issue(user)
	require.NoError(t, err)

	require.NoError(t, m.RevokeAccessToken(resp.AccessToken))
	info, err := m.Introspection(resp.AccessToken)
	require.NoError(t, err)
	require.False(t, info.Active)

	m.InvalidateRefreshToken(resp.RefreshToken)
	_, err = m.Refresh(resp.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}
