package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

// Config supplies refresh token settings. config.TokenConfig satisfies it.
type Config interface {
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

// Manager handles refresh token creation, validation and rotation
type Manager struct {
	mu      sync.Mutex
	repo    Repo
	config  Config
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(repo Repo, cfg Config, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		config:  cfg,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create generates a new refresh token for userID, replacing any previous one
func (m *Manager) Create(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(userID)
}

// Rotate consumes token and issues its replacement. An unknown, expired or already used
// token fails with ErrRefreshInvalid.
func (m *Manager) Rotate(token string) (userID, next string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, err := m.repo.Get(token)
	if err != nil || rt == nil {
		return "", "", apperrors.Wrapf(apperrors.ErrRefreshInvalid, "unknown refresh token")
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return "", "", apperrors.Wrapf(apperrors.ErrRefreshInvalid, "refresh token expired")
	}

	next, err = m.create(rt.UserID)
	if err != nil {
		return "", "", err
	}
	return rt.UserID, next, nil
}

// Delete removes a refresh token. Unknown tokens are ignored.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.repo.Delete(token)
}

// DeleteForUser removes the refresh token held by userID, if any
func (m *Manager) DeleteForUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, err := m.repo.GetByUserID(userID); err == nil && rt != nil {
		_ = m.repo.Delete(rt.Token)
	}
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return m.nowFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}

func (m *Manager) create(userID string) (string, error) {
	// Single refresh token per user
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    m.nowFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}
