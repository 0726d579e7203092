package token

import (
	"time"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	"github.com/jrsteele09/go-salvage-market/internal/config"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	tokenjwt "github.com/jrsteele09/go-salvage-market/token/jwt"
	"github.com/jrsteele09/go-salvage-market/token/keys"
	"github.com/jrsteele09/go-salvage-market/token/refresh"
	"github.com/jrsteele09/go-salvage-market/users"
)

// Manager issues, rotates, inspects and revokes the Account Service tokens
type Manager struct {
	signer       keys.Signer
	issuer       string
	creator      *tokenjwt.Creator
	inspector    *tokenjwt.Inspector
	refresh      *refresh.Manager
	refreshRepo  refresh.Repo
	userRepo     users.UserRepo
	revokedCache RevokedTokenCache
	tokenConfig  config.TokenConfig
	nowFunc      func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(signer keys.Signer, refreshRepo refresh.Repo, userRepo users.UserRepo, tokenConfig config.TokenConfig, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:       signer,
		refreshRepo:  refreshRepo,
		userRepo:     userRepo,
		tokenConfig:  tokenConfig,
		revokedCache: NewInMemoryRevokedTokenCache(),
		nowFunc:      time.Now,
	}
	for _, opt := range options {
		opt(m)
	}

	m.creator = tokenjwt.NewCreator(m.issuer, tokenConfig.GetAccessTokenExpiry(), signer, tokenjwt.WithNowFunc(m.nowFunc))
	m.inspector = tokenjwt.NewInspector(signer, m.revokedCache, m.nowFunc)
	m.refresh = refresh.NewManager(refreshRepo, tokenConfig, refresh.WithNowFunc(m.nowFunc))
	return m
}

// Issue creates a new token pair for user, replacing any refresh token they held
func (m *Manager) Issue(user *users.User) (*authmodel.AuthResponse, error) {
	accessToken, err := m.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.Issue CreateAccessToken")
	}
	refreshToken, err := m.refresh.Create(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.Issue CreateRefreshToken")
	}
	return m.response(user, accessToken, refreshToken), nil
}

// Refresh rotates refreshToken. The old token stops working.
func (m *Manager) Refresh(refreshToken string) (*authmodel.AuthResponse, error) {
	userID, next, err := m.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.Refresh Rotate")
	}

	user, err := m.userRepo.GetByID(userID)
	if err != nil {
		m.refresh.Delete(next)
		return nil, errors.Wrap(apperrors.ErrRefreshInvalid, "user not found for refresh token")
	}
	if !user.IsActive {
		m.refresh.Delete(next)
		return nil, errors.Wrap(apperrors.ErrRefreshInvalid, "user is inactive")
	}

	accessToken, err := m.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.Refresh CreateAccessToken")
	}
	return m.response(user, accessToken, next), nil
}

func (m *Manager) response(user *users.User, accessToken, refreshToken string) *authmodel.AuthResponse {
	return &authmodel.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         string(user.Role),
		Email:        user.Email,
		ExpiresIn:    int(m.creator.Expiry().Seconds()),
		ID:           user.ID,
	}
}

func (m *Manager) Introspection(rawToken string) (*tokenjwt.TokenIntrospection, error) {
	return m.inspector.Introspect(rawToken)
}

// RevokeAccessToken revokes an access token by its JTI
func (m *Manager) RevokeAccessToken(rawToken string) error {
	jti, exp, err := m.inspector.ParseAndExtractJTI(rawToken)
	if err != nil {
		return errors.Wrap(err, "Manager.RevokeAccessToken")
	}
	return m.revokedCache.Add(jti, exp)
}

func (m *Manager) InvalidateRefreshToken(refreshToken string) {
	m.refresh.Delete(refreshToken)
}

// InvalidateUser drops the refresh token held by userID
func (m *Manager) InvalidateUser(userID string) {
	m.refresh.DeleteForUser(userID)
}

// CleanupRevokedTokens removes expired tokens from the revocation cache
func (m *Manager) CleanupRevokedTokens() {
	if m.revokedCache != nil {
		m.revokedCache.Cleanup(m.nowFunc())
	}
}

// ListRefreshTokens pages through the stored refresh tokens for the admin API
func (m *Manager) ListRefreshTokens(offset, limit int) ([]*refresh.StoredRefreshToken, error) {
	return m.refreshRepo.List(offset, limit)
}
