package server

import (
	"net/http"
	"strconv"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

const defaultPageSize = 50

// SetActiveRequest is the body of PATCH /admin/users/{email}
type SetActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

// AdminUsersListHandler lists accounts without their password hashes
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := s.accounts.ListUsers(offset, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// AdminSetUserActiveHandler enables or disables an account. A disabled account loses its refresh token.
func (s *Server) AdminSetUserActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetActiveRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		if req.IsActive == nil {
			writeError(w, r, apperrors.Wrapf(apperrors.ErrInvalidRequest, "isActive is required"))
			return
		}
		if err := s.accounts.SetActive(r.PathValue("email"), *req.IsActive); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	return offset, limit
}
