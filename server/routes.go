package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Account Service
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Favorites Service
	s.RegisterRouteHandler("GET "+RouteAPIFavorites, ChainMiddleware(s.ListFavoritesHandler(), s.APIMiddleware(s.RequireAuth(), s.CompressionMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIFavorites, ChainMiddleware(s.AddFavoriteHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteAPIFavorite, ChainMiddleware(s.RemoveFavoriteHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Car listings
	s.RegisterRouteHandler("GET "+RouteAPIVehicles, ChainMiddleware(s.ListVehiclesHandler(), s.APIMiddleware(s.CompressionMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAPIVehicle, ChainMiddleware(s.GetVehicleHandler(), s.APIMiddleware()...))

	// Admin
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersListHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("PATCH "+RouteAdminUser, ChainMiddleware(s.AdminSetUserActiveHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
