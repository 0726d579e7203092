package account

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

const maxErrorBody = 64 << 10

// APIError is a non 2xx reply. It unwraps to the sentinel for the status.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (%d): %s", e.kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (%d)", e.kind, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(resp *http.Response, kind error) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, kind: kind}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body authmodel.ErrorResponse
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}

func defaultKind(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status >= 500:
		return apperrors.ErrServer
	default:
		return apperrors.ErrInvalidRequest
	}
}

func loginKind(status int) error {
	if status == http.StatusUnauthorized {
		return apperrors.ErrInvalidCredentials
	}
	return defaultKind(status)
}

func registerKind(status int) error {
	if status == http.StatusConflict {
		return apperrors.ErrEmailExists
	}
	return defaultKind(status)
}

func refreshKind(status int) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperrors.ErrRefreshInvalid
	}
	return defaultKind(status)
}
