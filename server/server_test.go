package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	"github.com/jrsteele09/go-salvage-market/internal/config"
	"github.com/jrsteele09/go-salvage-market/server/favoritesrepo"
	refreshrepofake "github.com/jrsteele09/go-salvage-market/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-salvage-market/users/repofake"
	"github.com/jrsteele09/go-salvage-market/vehicles"
	fakevehiclerepo "github.com/jrsteele09/go-salvage-market/vehicles/repofake"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "Admin1234"
)

type testConfig struct {
	config.Config
}

func (testConfig) GetEnv() string                      { return "TEST" }
func (testConfig) GetJWTSecret() string                { return "test-secret" }
func (testConfig) GetSystemAdminEmail() string         { return adminEmail }
func (testConfig) GetSystemAdminPassword() string      { return adminPassword }
func (testConfig) GetAccessTokenExpiry() time.Duration { return time.Hour }
func (testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.AllowedOrigins{"http://localhost:3000": {}}
}

// clock is a settable time source shared by the server under test
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	*Server
	repos Repos
	clock *clock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repos := Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Favorites:     favoritesrepo.NewInMemoryRepo(),
		Vehicles:      fakevehiclerepo.NewFakeCatalog(),
	}
	require.NoError(t, repos.Vehicles.Upsert(&vehicles.Vehicle{ID: "car-a", Make: "Toyota", Model: "Corolla", Year: 2019, IsActive: true}))
	require.NoError(t, repos.Vehicles.Upsert(&vehicles.Vehicle{ID: "car-b", Make: "Ford", Model: "Transit", Year: 2016, IsActive: true}))

	c := newClock()
	s, err := New(testConfig{Config: config.New()}, repos, WithNowFunc(c.Now))
	require.NoError(t, err)
	return &testServer{Server: s, repos: repos, clock: c}
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, email, password string) authmodel.AuthResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, RouteAuthLogin, "", authmodel.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[authmodel.AuthResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, code, decode[authmodel.ErrorResponse](t, rec).Code)
}

func TestLoginBootstrapAdmin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.login(t, adminEmail, adminPassword)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "ADMIN", resp.Role)
	require.Equal(t, adminEmail, resp.Email)
	require.Equal(t, 3600, resp.ExpiresIn)
	require.NotEmpty(t, resp.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, RouteAuthLogin, "", authmodel.LoginRequest{Email: adminEmail, Password: "wrong"})
	requireErrorCode(t, rec, http.StatusUnauthorized, authmodel.CodeInvalidCredentials)

	unknown := ts.do(t, http.MethodPost, RouteAuthLogin, "", authmodel.LoginRequest{Email: "nobody@test.com", Password: "wrong"})
	requireErrorCode(t, unknown, http.StatusUnauthorized, authmodel.CodeInvalidCredentials)
	require.Equal(t, rec.Body.String(), unknown.Body.String())

	rec = ts.do(t, http.MethodPost, RouteAuthLogin, "", authmodel.LoginRequest{Email: "not-an-email"})
	requireErrorCode(t, rec, http.StatusBadRequest, authmodel.CodeInvalidRequest)
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, RouteAuthLogin, bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	requireErrorCode(t, rec, http.StatusBadRequest, authmodel.CodeInvalidRequest)
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)
	req := authmodel.RegisterRequest{Email: "dealer@test.com", Password: "Dealer1234", Role: "DEALER", Name: "Salvage Co"}

	rec := ts.do(t, http.MethodPost, RouteAuthRegister, "", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[authmodel.AuthResponse](t, rec)
	require.Equal(t, "DEALER", resp.Role)
	require.NotEmpty(t, resp.AccessToken)

	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthRegister, "", req), http.StatusConflict, authmodel.CodeEmailExists)

	admin := authmodel.RegisterRequest{Email: "boss@test.com", Password: "Admin1234", Role: "ADMIN"}
	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthRegister, "", admin), http.StatusBadRequest, authmodel.CodeInvalidRequest)

	weak := authmodel.RegisterRequest{Email: "buyer@test.com", Password: "short"}
	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthRegister, "", weak), http.StatusBadRequest, authmodel.CodeInvalidRequest)
}

func TestRefreshRotatesTokens(t *testing.T) {
	ts := newTestServer(t)
	first := ts.login(t, adminEmail, adminPassword)

	rec := ts.do(t, http.MethodPost, RouteAuthRefresh, "", authmodel.RefreshRequest{RefreshToken: first.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode[authmodel.AuthResponse](t, rec)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, "ADMIN", second.Role)

	reused := ts.do(t, http.MethodPost, RouteAuthRefresh, "", authmodel.RefreshRequest{RefreshToken: first.RefreshToken})
	requireErrorCode(t, reused, http.StatusUnauthorized, authmodel.CodeRefreshInvalid)

	empty := ts.do(t, http.MethodPost, RouteAuthRefresh, "", authmodel.RefreshRequest{})
	requireErrorCode(t, empty, http.StatusUnauthorized, authmodel.CodeRefreshInvalid)
}

func TestMeAndTokenExpiry(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.login(t, adminEmail, adminPassword)

	rec := ts.do(t, http.MethodGet, RouteAuthMe, resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, adminEmail, decode[map[string]any](t, rec)["email"])
	require.NotContains(t, rec.Body.String(), "password")

	requireErrorCode(t, ts.do(t, http.MethodGet, RouteAuthMe, "", nil), http.StatusUnauthorized, authmodel.CodeUnauthorized)

	ts.clock.Advance(61 * time.Minute)
	rec = ts.do(t, http.MethodGet, RouteAuthMe, resp.AccessToken, nil)
	requireErrorCode(t, rec, http.StatusUnauthorized, authmodel.CodeInvalidToken)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestLogoutRevokesTokens(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.login(t, adminEmail, adminPassword)

	rec := ts.do(t, http.MethodPost, RouteAuthLogout, resp.AccessToken, authmodel.LogoutRequest{RefreshToken: resp.RefreshToken})
	require.Equal(t, http.StatusNoContent, rec.Code)

	requireErrorCode(t, ts.do(t, http.MethodGet, RouteAuthMe, resp.AccessToken, nil), http.StatusUnauthorized, authmodel.CodeInvalidToken)
	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthRefresh, "", authmodel.RefreshRequest{RefreshToken: resp.RefreshToken}),
		http.StatusUnauthorized, authmodel.CodeRefreshInvalid)

	// Logging out again, or with nothing, still succeeds
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, RouteAuthLogout, "", nil).Code)
}

func TestFavoritesEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, adminEmail, adminPassword).AccessToken

	requireErrorCode(t, ts.do(t, http.MethodGet, RouteAPIFavorites, "", nil), http.StatusUnauthorized, authmodel.CodeUnauthorized)

	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAPIFavorites, token, authmodel.FavoriteRequest{VehicleID: "missing"}),
		http.StatusNotFound, authmodel.CodeNotFound)
	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAPIFavorites, token, authmodel.FavoriteRequest{}),
		http.StatusBadRequest, authmodel.CodeInvalidRequest)

	for _, id := range []string{"car-a", "car-b", "car-a"} {
		rec := ts.do(t, http.MethodPost, RouteAPIFavorites, token, authmodel.FavoriteRequest{VehicleID: id})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.do(t, http.MethodGet, RouteAPIFavorites, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]vehicles.Vehicle](t, rec)
	require.Len(t, list, 2)
	require.Equal(t, "car-a", list[0].ID)
	require.Equal(t, "car-b", list[1].ID)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, RouteAPIFavorites+"/car-a", token, nil).Code)
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, RouteAPIFavorites+"/car-a", token, nil).Code)

	list = decode[[]vehicles.Vehicle](t, ts.do(t, http.MethodGet, RouteAPIFavorites, token, nil))
	require.Len(t, list, 1)
	require.Equal(t, "car-b", list[0].ID)
}

func TestFavoritesArePerUser(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword).AccessToken
	rec := ts.do(t, http.MethodPost, RouteAuthRegister, "", authmodel.RegisterRequest{Email: "buyer@test.com", Password: "Buyer1234"})
	require.Equal(t, http.StatusCreated, rec.Code)
	buyer := decode[authmodel.AuthResponse](t, rec).AccessToken

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, RouteAPIFavorites, admin, authmodel.FavoriteRequest{VehicleID: "car-a"}).Code)

	list := decode[[]vehicles.Vehicle](t, ts.do(t, http.MethodGet, RouteAPIFavorites, buyer, nil))
	require.Empty(t, list)
}

func TestVehicleEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, RouteAPIVehicles, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]vehicles.Vehicle](t, rec), 2)

	rec = ts.do(t, http.MethodGet, RouteAPIVehicles+"/car-b", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Transit", decode[vehicles.Vehicle](t, rec).Model)

	requireErrorCode(t, ts.do(t, http.MethodGet, RouteAPIVehicles+"/nope", "", nil), http.StatusNotFound, authmodel.CodeNotFound)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, adminEmail, adminPassword).AccessToken
	rec := ts.do(t, http.MethodPost, RouteAuthRegister, "", authmodel.RegisterRequest{Email: "buyer@test.com", Password: "Buyer1234"})
	require.Equal(t, http.StatusCreated, rec.Code)
	buyer := decode[authmodel.AuthResponse](t, rec)

	requireErrorCode(t, ts.do(t, http.MethodGet, RouteAdminUsers, buyer.AccessToken, nil), http.StatusForbidden, authmodel.CodeForbidden)

	rec = ts.do(t, http.MethodGet, RouteAdminUsers, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]map[string]any](t, rec), 2)

	inactive := false
	rec = ts.do(t, http.MethodPatch, RouteAdminUsers+"/buyer@test.com", admin, SetActiveRequest{IsActive: &inactive})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthLogin, "", authmodel.LoginRequest{Email: "buyer@test.com", Password: "Buyer1234"}),
		http.StatusForbidden, authmodel.CodeForbidden)
	requireErrorCode(t, ts.do(t, http.MethodPost, RouteAuthRefresh, "", authmodel.RefreshRequest{RefreshToken: buyer.RefreshToken}),
		http.StatusUnauthorized, authmodel.CodeRefreshInvalid)

	requireErrorCode(t, ts.do(t, http.MethodPatch, RouteAdminUsers+"/ghost@test.com", admin, SetActiveRequest{IsActive: &inactive}),
		http.StatusNotFound, authmodel.CodeNotFound)
	requireErrorCode(t, ts.do(t, http.MethodPatch, RouteAdminUsers+"/buyer@test.com", admin, map[string]any{}),
		http.StatusBadRequest, authmodel.CodeInvalidRequest)
}

func TestCorsPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, RouteAuthLogin, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodOptions, RouteAuthLogin, nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	ts := newTestServer(t)
	h := ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, ts.APIMiddleware()...)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	requireErrorCode(t, rec, http.StatusInternalServerError, authmodel.CodeServerError)
}

func TestBootstrapGeneratesAdminPassword(t *testing.T) {
	repos := Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Favorites:     favoritesrepo.NewInMemoryRepo(),
		Vehicles:      fakevehiclerepo.NewFakeCatalog(),
	}
	s, err := New(testConfig{Config: config.New()}, repos)
	require.NoError(t, err)

	generated, err := s.createSystemAdmin("second@test.com", "")
	require.NoError(t, err)
	require.NotEmpty(t, generated)

	user, err := repos.Users.GetByEmail("second@test.com")
	require.NoError(t, err)
	require.True(t, user.IsAdmin())
	require.True(t, user.CheckPassword(generated))

	again, err := s.createSystemAdmin("second@test.com", "")
	require.NoError(t, err)
	require.Empty(t, again)
}
