package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, authmodel.ErrorResponse{Message: message, Code: code})
}

// writeError maps an error from the service layer onto a status and error code
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorStatus(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	writeErrorResponse(w, status, code, message)
}

func errorStatus(err error) (int, string, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, authmodel.CodeInvalidCredentials, apperrors.ErrInvalidCredentials.Error()
	case apperrors.Is(err, apperrors.ErrEmailExists):
		return http.StatusConflict, authmodel.CodeEmailExists, apperrors.ErrEmailExists.Error()
	case apperrors.Is(err, apperrors.ErrRefreshInvalid):
		return http.StatusUnauthorized, authmodel.CodeRefreshInvalid, apperrors.ErrRefreshInvalid.Error()
	case apperrors.Is(err, apperrors.ErrInvalidToken), apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, authmodel.CodeInvalidToken, apperrors.ErrInvalidToken.Error()
	case apperrors.Is(err, apperrors.ErrUserInactive):
		return http.StatusForbidden, authmodel.CodeForbidden, apperrors.ErrUserInactive.Error()
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		// Validation messages are meant for the user
		return http.StatusBadRequest, authmodel.CodeInvalidRequest, err.Error()
	case apperrors.Is(err, apperrors.ErrUserNotFound), apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, authmodel.CodeNotFound, apperrors.ErrNotFound.Error()
	default:
		return http.StatusInternalServerError, authmodel.CodeServerError, "internal server error"
	}
}

// decodeJSON reads a size limited JSON body into dst. An empty body leaves dst untouched when optional.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if optional {
			return nil
		}
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed JSON body: %v", err)
	}
	return nil
}
