package server

import "github.com/jrsteele09/go-salvage-market/favorites"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Account Service
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthMe       = "/auth/me"

	// Favorites Service
	RouteAPIFavorites = favorites.FavoritesPath
	RouteAPIFavorite  = favorites.FavoritesPath + "/{vehicleId}"

	// Car listings (read only)
	RouteAPIVehicles = "/api/vehicles"
	RouteAPIVehicle  = "/api/vehicles/{vehicleId}"

	// Admin Routes
	RouteAdminUsers = "/admin/users"
	RouteAdminUser  = "/admin/users/{email}"

	RouteHealth = "/health"
)
