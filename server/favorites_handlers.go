package server

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

// ListFavoritesHandler returns the caller's favorite vehicles in the order they were added
func (s *Server) ListFavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())
		ids, err := s.repos.Favorites.List(userID)
		if err != nil {
			writeError(w, r, errors.Wrap(err, "[ListFavorites]"))
			return
		}

		items := make([]vehicles.Vehicle, 0, len(ids))
		for _, id := range ids {
			v, err := s.repos.Vehicles.GetByID(id)
			if err != nil {
				// Listing withdrawn since it was favorited
				log.Debug().Str("user", userID).Str("vehicle", id).Msg("favorite no longer listed")
				continue
			}
			items = append(items, *v)
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// AddFavoriteHandler adds a listed vehicle to the caller's favorites. Adding twice is a no-op.
func (s *Server) AddFavoriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.FavoriteRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		vehicleID := strings.TrimSpace(req.VehicleID)
		if vehicleID == "" {
			writeError(w, r, apperrors.Wrapf(apperrors.ErrInvalidRequest, "vehicleId is required"))
			return
		}

		vehicle, err := s.repos.Vehicles.GetByID(vehicleID)
		if err != nil {
			writeError(w, r, apperrors.Wrapf(apperrors.ErrNotFound, "vehicle %s", vehicleID))
			return
		}
		if err := s.repos.Favorites.Add(userIDFromContext(r.Context()), vehicle.ID); err != nil {
			writeError(w, r, errors.Wrap(err, "[AddFavorite]"))
			return
		}
		writeJSON(w, http.StatusCreated, vehicle)
	}
}

func (s *Server) RemoveFavoriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicleId")
		if err := s.repos.Favorites.Remove(userIDFromContext(r.Context()), vehicleID); err != nil {
			writeError(w, r, errors.Wrap(err, "[RemoveFavorite]"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListVehiclesHandler pages through the catalog with ?offset= and ?limit=
func (s *Server) ListVehiclesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := s.repos.Vehicles.List(offset, limit)
		if err != nil {
			writeError(w, r, errors.Wrap(err, "[ListVehicles]"))
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetVehicleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicle, err := s.repos.Vehicles.GetByID(r.PathValue("vehicleId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)
	}
}
