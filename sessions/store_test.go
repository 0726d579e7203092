package sessions_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/sessions"
	"github.com/jrsteele09/go-salvage-market/storage"
	"github.com/jrsteele09/go-salvage-market/users"
)

type fakeAccount struct {
	mu           sync.Mutex
	loginErr     error
	refreshErr   error
	meErr        error
	refreshGate  chan struct{}
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	seq          atomic.Int32
	expiresIn    int
}

func (f *fakeAccount) Login(_ context.Context, req authmodel.LoginRequest) (*authmodel.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authmodel.AuthResponse{AccessToken: "tok1", RefreshToken: "ref1", Role: "ADMIN", Email: req.Email, ID: "1", ExpiresIn: f.expiresIn}, nil
}

func (f *fakeAccount) Register(_ context.Context, req authmodel.RegisterRequest) (*authmodel.AuthResponse, error) {
	if req.Email == "taken@test.com" {
		return nil, apperrors.ErrEmailExists
	}
	return &authmodel.AuthResponse{AccessToken: "tokR", RefreshToken: "refR", Role: req.Role, Email: req.Email, ID: "2"}, nil
}

func (f *fakeAccount) Refresh(_ context.Context, refreshToken string) (*authmodel.AuthResponse, error) {
	f.refreshCalls.Add(1)
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	n := f.seq.Add(1)
	return &authmodel.AuthResponse{
		AccessToken:  "tok-refreshed-" + string(rune('0'+n)),
		RefreshToken: "ref-refreshed-" + string(rune('0'+n)),
		Role:         "ADMIN",
		Email:        "admin@test.com",
		ID:           "1",
		ExpiresIn:    f.expiresIn,
	}, nil
}

func (f *fakeAccount) Logout(context.Context, string, string) error {
	f.logoutCalls.Add(1)
	return apperrors.ErrNetwork
}

func (f *fakeAccount) Me(_ context.Context, accessToken string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	if accessToken == "stale" {
		return nil, apperrors.ErrUnauthorized
	}
	return &users.User{ID: "1", Email: "admin@test.com", Role: users.RoleAdmin, IsActive: true, Name: "Admin"}, nil
}

func newTestStore(api *fakeAccount, options ...sessions.StoreOption) (*sessions.Store, *storage.Memory) {
	kv := storage.NewMemory()
	return sessions.New(api, kv, options...), kv
}

func TestLoginInstallsSessionAndPersistsTokens(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(&fakeAccount{})

	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	state := store.State()
	require.True(t, state.IsAuthenticated())
	require.Equal(t, "tok1", store.AccessToken())
	require.Equal(t, "ref1", state.RefreshToken())
	require.Equal(t, users.RoleAdmin, state.User.Role)
	require.Equal(t, "admin@test.com", state.User.Email)

	v, ok, _ := kv.Get(ctx, storage.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "tok1", v)
	v, ok, _ = kv.Get(ctx, storage.KeyRefreshToken)
	require.True(t, ok)
	require.Equal(t, "ref1", v)
}

func TestLoginFailureLeavesUnauthenticated(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{}
	store, kv := newTestStore(api)
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	api.loginErr = apperrors.ErrInvalidCredentials
	err := store.Login(ctx, "admin@test.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.False(t, store.IsAuthenticated())
	require.Empty(t, store.AccessToken())
	require.Nil(t, store.State().User)

	_, ok, _ := kv.Get(ctx, storage.KeyAccessToken)
	require.False(t, ok)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(&fakeAccount{})

	err := store.Register(ctx, authmodel.RegisterRequest{Email: "taken@test.com", Password: "Password1"})
	require.ErrorIs(t, err, apperrors.ErrEmailExists)
	require.False(t, store.IsAuthenticated())

	require.NoError(t, store.Register(ctx, authmodel.RegisterRequest{Email: "dealer@test.com", Password: "Password1", Role: "dealer"}))
	require.True(t, store.IsAuthenticated())
	require.Equal(t, users.RoleDealer, store.State().User.Role)
}

func TestLoginThenLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{}
	store, kv := newTestStore(api)

	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	store.Logout(ctx)

	require.False(t, store.IsAuthenticated())
	require.Empty(t, store.AccessToken())
	_, ok, _ := kv.Get(ctx, storage.KeyAccessToken)
	require.False(t, ok)
	_, ok, _ = kv.Get(ctx, storage.KeyRefreshToken)
	require.False(t, ok)
	// remote failure is ignored
	require.Equal(t, int32(1), api.logoutCalls.Load())
}

func TestLogoutWhenSignedOutSkipsRemote(t *testing.T) {
	api := &fakeAccount{}
	store, _ := newTestStore(api)
	store.Logout(context.Background())
	require.Equal(t, int32(0), api.logoutCalls.Load())
}

func TestRefreshRotatesTokensAndKeepsProfile(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(&fakeAccount{})
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	require.NoError(t, store.FetchProfile(ctx))
	require.Equal(t, "Admin", store.State().User.Name)

	require.NoError(t, store.Refresh(ctx))
	require.Equal(t, "tok-refreshed-1", store.AccessToken())
	require.Equal(t, "Admin", store.State().User.Name)

	v, _, _ := kv.Get(ctx, storage.KeyRefreshToken)
	require.Equal(t, "ref-refreshed-1", v)
}

func TestRefreshRejectedSignsOut(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{}
	store, kv := newTestStore(api)
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	api.refreshErr = apperrors.ErrRefreshInvalid
	err := store.Refresh(ctx)
	require.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
	require.False(t, store.IsAuthenticated())
	require.Empty(t, store.AccessToken())
	_, ok, _ := kv.Get(ctx, storage.KeyRefreshToken)
	require.False(t, ok)
}

func TestRefreshWithoutSession(t *testing.T) {
	store, _ := newTestStore(&fakeAccount{})
	require.ErrorIs(t, store.Refresh(context.Background()), apperrors.ErrRefreshInvalid)
}

func TestConcurrentRefreshSharesOneRequest(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{refreshGate: make(chan struct{})}
	store, _ := newTestStore(api)
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Refresh(ctx)
		}()
	}

	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// let every caller join the flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(api.refreshGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), api.refreshCalls.Load())
	require.Equal(t, "tok-refreshed-1", store.AccessToken())
}

func TestRefreshCallerCancellationDoesNotAbortFlight(t *testing.T) {
	api := &fakeAccount{refreshGate: make(chan struct{})}
	store, _ := newTestStore(api)
	require.NoError(t, store.Login(context.Background(), "admin@test.com", "Password1"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- store.Refresh(ctx) }()
	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(api.refreshGate)
	require.Eventually(t, func() bool { return store.AccessToken() == "tok-refreshed-1" }, time.Second, 5*time.Millisecond)
}

func TestLogoutDuringRefreshIsNotUndone(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{refreshGate: make(chan struct{})}
	store, _ := newTestStore(api)
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	errCh := make(chan error, 1)
	go func() { errCh <- store.Refresh(ctx) }()
	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	store.Logout(ctx)
	close(api.refreshGate)

	require.ErrorIs(t, <-errCh, apperrors.ErrUnauthorized)
	require.False(t, store.IsAuthenticated())
}

func TestProfileFetchDuringRefreshKeepsRotatedTokens(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{refreshGate: make(chan struct{})}
	store, kv := newTestStore(api)
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	errCh := make(chan error, 1)
	go func() { errCh <- store.Refresh(ctx) }()
	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, store.FetchProfile(ctx))
	require.Equal(t, "Admin", store.State().User.Name)
	close(api.refreshGate)

	require.NoError(t, <-errCh)
	state := store.State()
	require.Equal(t, "tok-refreshed-1", state.AccessToken())
	require.Equal(t, "ref-refreshed-1", state.RefreshToken())
	require.Equal(t, "Admin", state.User.Name)
	v, _, _ := kv.Get(ctx, storage.KeyRefreshToken)
	require.Equal(t, "ref-refreshed-1", v)

	// the next renewal presents the rotated token
	require.NoError(t, store.Refresh(ctx))
	require.Equal(t, "tok-refreshed-2", store.AccessToken())
}

func TestProfileFetchIgnoredAfterAccountSwitch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(&fakeAccount{})
	require.NoError(t, store.Register(ctx, authmodel.RegisterRequest{Email: "dealer@test.com", Password: "Password1", Role: "DEALER"}))

	// the profile endpoint answers for account 1 while account 2 is signed in
	require.NoError(t, store.FetchProfile(ctx))
	require.Equal(t, "dealer@test.com", store.State().User.Email)
	require.Empty(t, store.State().User.Name)
}

func TestSubscribeReceivesCommittedStates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(&fakeAccount{})

	var mu sync.Mutex
	var seen []bool
	unsubscribe := store.Subscribe(func(s sessions.State) {
		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, s.Token != nil, s.User != nil)
		seen = append(seen, s.IsAuthenticated())
	})

	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	store.Logout(ctx)
	unsubscribe()
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []bool{true, false}, seen)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing persisted", func(t *testing.T) {
		store, _ := newTestStore(&fakeAccount{})
		require.NoError(t, store.Restore(ctx))
		require.False(t, store.IsAuthenticated())
	})

	t.Run("valid access token", func(t *testing.T) {
		store, kv := newTestStore(&fakeAccount{})
		require.NoError(t, kv.Set(ctx, storage.KeyAccessToken, "tok1"))
		require.NoError(t, kv.Set(ctx, storage.KeyRefreshToken, "ref1"))
		require.NoError(t, store.Restore(ctx))
		require.True(t, store.IsAuthenticated())
		require.Equal(t, "tok1", store.AccessToken())
		require.Equal(t, "Admin", store.State().User.Name)
	})

	t.Run("stale access token refreshes once", func(t *testing.T) {
		api := &fakeAccount{}
		store, kv := newTestStore(api)
		require.NoError(t, kv.Set(ctx, storage.KeyAccessToken, "stale"))
		require.NoError(t, kv.Set(ctx, storage.KeyRefreshToken, "ref1"))
		require.NoError(t, store.Restore(ctx))
		require.Equal(t, int32(1), api.refreshCalls.Load())
		require.Equal(t, "tok-refreshed-1", store.AccessToken())
		require.Equal(t, "Admin", store.State().User.Name)
	})

	t.Run("failure clears storage", func(t *testing.T) {
		api := &fakeAccount{refreshErr: apperrors.ErrRefreshInvalid}
		store, kv := newTestStore(api)
		require.NoError(t, kv.Set(ctx, storage.KeyAccessToken, "stale"))
		require.NoError(t, kv.Set(ctx, storage.KeyRefreshToken, "ref1"))
		require.ErrorIs(t, store.Restore(ctx), apperrors.ErrRefreshInvalid)
		require.False(t, store.IsAuthenticated())
		_, ok, _ := kv.Get(ctx, storage.KeyAccessToken)
		require.False(t, ok)
	})
}

func TestFetchProfileRequiresSession(t *testing.T) {
	store, _ := newTestStore(&fakeAccount{})
	require.ErrorIs(t, store.FetchProfile(context.Background()), apperrors.ErrUnauthorized)
}

func TestRenewalPeriodClampsToReportedLifetime(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(&fakeAccount{expiresIn: 60})
	require.Equal(t, sessions.DefaultRenewalInterval, store.RenewalPeriod())

	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	require.Equal(t, 50*time.Second, store.RenewalPeriod())

	hourStore, _ := newTestStore(&fakeAccount{expiresIn: 3600})
	require.NoError(t, hourStore.Login(ctx, "admin@test.com", "Password1"))
	require.Equal(t, 50*time.Minute, hourStore.RenewalPeriod())
}

func TestRenewalLoopRefreshesWhileAuthenticated(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{}
	store, _ := newTestStore(api, sessions.WithRenewalInterval(20*time.Millisecond))
	store.Start(ctx)
	defer store.Close()

	// no refresh while signed out
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(0), api.refreshCalls.Load())

	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	require.Eventually(t, func() bool { return api.refreshCalls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, store.IsAuthenticated())
}

func TestRenewalFailureSignsOut(t *testing.T) {
	ctx := context.Background()
	api := &fakeAccount{refreshErr: apperrors.ErrRefreshInvalid}
	store, _ := newTestStore(api, sessions.WithRenewalInterval(20*time.Millisecond))
	require.NoError(t, store.Login(ctx, "admin@test.com", "Password1"))
	store.Start(ctx)
	defer store.Close()

	require.Eventually(t, func() bool { return !store.IsAuthenticated() }, 2*time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	store, _ := newTestStore(&fakeAccount{})
	store.Start(context.Background())
	store.Start(context.Background())
	store.Close()
	store.Close()
}
