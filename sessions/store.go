// Package sessions owns the client side authentication session: sign in, token renewal,
// 401 recovery support and sign out.
package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	"github.com/jrsteele09/go-salvage-market/internal/config"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/internal/observer"
	"github.com/jrsteele09/go-salvage-market/storage"
	"github.com/jrsteele09/go-salvage-market/users"
)

// DefaultRenewalInterval renews 10 minutes before a 60 minute token expires
const DefaultRenewalInterval = 50 * time.Minute

const refreshFlightKey = "refresh"

// AccountAPI is the subset of the Account Service the store depends on.
// account.Client implements it.
type AccountAPI interface {
	Login(ctx context.Context, req authmodel.LoginRequest) (*authmodel.AuthResponse, error)
	Register(ctx context.Context, req authmodel.RegisterRequest) (*authmodel.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*authmodel.AuthResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*users.User, error)
}

// Store is safe for concurrent use. Subscribers must not mutate the store synchronously
// from their callback.
type Store struct {
	mu         sync.RWMutex
	state      State
	generation uint64 // moved only when the token pair is installed or cleared
	lifetime   time.Duration

	notifyMu  sync.Mutex
	observers observer.Registry[State]

	api             AccountAPI
	kv              storage.KV
	flight          singleflight.Group
	renewalInterval time.Duration
	nowFunc         func() time.Time

	loopMu sync.Mutex
	rearm  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

type StoreOption func(*Store)

// WithRenewalInterval sets the background renewal period
func WithRenewalInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.renewalInterval = d
		}
	}
}

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func New(api AccountAPI, kv storage.KV, options ...StoreOption) *Store {
	s := &Store{
		api:             api,
		kv:              kv,
		renewalInterval: DefaultRenewalInterval,
		nowFunc:         time.Now,
		rearm:           make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken()
}

// Subscribe registers fn for every committed state change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.observers.Subscribe(fn)
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, authmodel.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.clear(ctx)
		log.Debug().Err(err).Str("email", email).Msg("login failed")
		return err
	}
	s.install(ctx, resp, nil)
	log.Info().Str("email", resp.Email).Str("role", resp.Role).Msg("signed in")
	return nil
}

func (s *Store) Register(ctx context.Context, req authmodel.RegisterRequest) error {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.clear(ctx)
		log.Debug().Err(err).Str("email", req.Email).Msg("registration failed")
		return err
	}
	s.install(ctx, resp, nil)
	log.Info().Str("email", resp.Email).Str("role", resp.Role).Msg("registered")
	return nil
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers share one request.
// Any failure signs the session out. A caller whose ctx ends stops waiting but the shared
// request runs to completion.
func (s *Store) Refresh(ctx context.Context) error {
	ch := s.flight.DoChan(refreshFlightKey, func() (any, error) {
		return nil, s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.state.RefreshToken()
	gen := s.generation
	s.mu.RUnlock()

	if refreshToken == "" {
		s.clearIf(ctx, gen)
		return apperrors.Wrapf(apperrors.ErrRefreshInvalid, "no refresh token")
	}

	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.clearIf(ctx, gen)
		log.Warn().Err(err).Msg("session refresh failed, signed out")
		return err
	}
	if !s.installIf(ctx, resp, &gen) {
		// signed out or signed in again while the request was in flight
		if s.IsAuthenticated() {
			return nil
		}
		return apperrors.Wrapf(apperrors.ErrUnauthorized, "session ended during refresh")
	}
	log.Debug().Msg("session refreshed")
	return nil
}

// Logout clears the session locally and tells the server on a best effort basis.
func (s *Store) Logout(ctx context.Context) {
	s.mu.RLock()
	accessToken, refreshToken := s.state.AccessToken(), s.state.RefreshToken()
	s.mu.RUnlock()

	s.clear(ctx)

	if accessToken == "" && refreshToken == "" {
		return
	}
	if err := s.api.Logout(ctx, accessToken, refreshToken); err != nil {
		log.Warn().Err(err).Msg("remote logout failed")
	}
}

// FetchProfile replaces the minimal user with the full profile. A 401 triggers one refresh
// and one retry. The token generation is left alone so a refresh in flight still installs
// its rotated pair.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.mu.RLock()
	accessToken := s.state.AccessToken()
	s.mu.RUnlock()
	if accessToken == "" {
		return apperrors.Wrapf(apperrors.ErrUnauthorized, "not signed in")
	}

	u, err := s.api.Me(ctx, accessToken)
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		if err = s.Refresh(ctx); err != nil {
			return err
		}
		u, err = s.api.Me(ctx, s.AccessToken())
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.state.IsAuthenticated() || s.state.User.ID != u.ID {
		// signed out or another account signed in meanwhile
		s.mu.Unlock()
		return nil
	}
	s.state.User = u
	s.commitLocked()
	return nil
}

// Restore rehydrates the session from persisted tokens, resolving the user through a
// profile fetch. Nothing persisted is not an error. Any failure leaves the store signed
// out with storage cleared.
func (s *Store) Restore(ctx context.Context) error {
	accessToken, ok, err := s.kv.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("reading persisted access token")
	}
	if !ok || accessToken == "" {
		return nil
	}
	refreshToken, _, err := s.kv.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("reading persisted refresh token")
	}

	u, err := s.api.Me(ctx, accessToken)
	if apperrors.Is(err, apperrors.ErrUnauthorized) && refreshToken != "" {
		var resp *authmodel.AuthResponse
		resp, err = s.api.Refresh(ctx, refreshToken)
		if err == nil {
			s.install(ctx, resp, nil)
			return s.FetchProfile(ctx)
		}
	}
	if err != nil {
		s.clear(ctx)
		return err
	}

	s.install(ctx, &authmodel.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
	}, u)
	log.Info().Str("email", u.Email).Msg("session restored")
	return nil
}

func (s *Store) install(ctx context.Context, resp *authmodel.AuthResponse, profile *users.User) {
	s.installWithProfile(ctx, resp, profile, nil)
}

func (s *Store) installIf(ctx context.Context, resp *authmodel.AuthResponse, gen *uint64) bool {
	return s.installWithProfile(ctx, resp, nil, gen)
}

func (s *Store) installWithProfile(ctx context.Context, resp *authmodel.AuthResponse, profile *users.User, gen *uint64) bool {
	token := resp.Token(s.nowFunc())

	s.mu.Lock()
	if gen != nil && s.generation != *gen {
		s.mu.Unlock()
		return false
	}
	user := profile
	if user == nil {
		user = userFromResponse(resp, s.state.User)
	}
	s.state = State{Token: token, User: user}
	s.lifetime = resp.Lifetime()
	s.generation++
	s.persistTokens(ctx, token.AccessToken, token.RefreshToken)
	s.commitLocked()

	select {
	case s.rearm <- struct{}{}:
	default:
	}
	return true
}

// userFromResponse builds the minimal user. A refresh for the same account keeps the
// richer profile already held.
func userFromResponse(resp *authmodel.AuthResponse, current *users.User) *users.User {
	role := users.RoleType(strings.ToUpper(resp.Role))
	if current != nil && current.ID != "" && current.ID == resp.ID {
		u := *current
		if resp.Email != "" {
			u.Email = resp.Email
		}
		if resp.Role != "" {
			u.Role = role
		}
		return &u
	}
	return &users.User{
		ID:       resp.ID,
		Email:    resp.Email,
		Role:     role,
		IsActive: true,
	}
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked(ctx)
}

func (s *Store) clearIf(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.clearLocked(ctx)
}

// clearLocked must be called with mu held and releases it
func (s *Store) clearLocked(ctx context.Context) {
	s.state = State{}
	s.lifetime = 0
	s.generation++
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken} {
		if err := s.kv.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("clearing persisted token")
		}
	}
	s.commitLocked()
}

func (s *Store) persistTokens(ctx context.Context, accessToken, refreshToken string) {
	if err := s.kv.Set(ctx, storage.KeyAccessToken, accessToken); err != nil {
		log.Warn().Err(err).Msg("persisting access token")
	}
	if err := s.kv.Set(ctx, storage.KeyRefreshToken, refreshToken); err != nil {
		log.Warn().Err(err).Msg("persisting refresh token")
	}
}

// commitLocked must be called with mu held. It releases mu and delivers the committed
// state in commit order.
func (s *Store) commitLocked() {
	snapshot := s.state.clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.observers.Notify(snapshot)
}

// renewalPeriod is the configured interval, shortened when the server reports a lifetime
// that would expire the token first.
func (s *Store) renewalPeriod() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	interval := s.renewalInterval
	if s.lifetime > 0 {
		if clamped := config.RenewalIntervalFor(s.lifetime); clamped > 0 && clamped < interval {
			interval = clamped
		}
	}
	return interval
}
