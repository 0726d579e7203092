package auth

import (
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

var (
	AdminRegistrationErr  = errors.Wrap(apperrors.ErrInvalidRequest, "admin accounts cannot self register")
	DealerNameRequiredErr = errors.Wrap(apperrors.ErrInvalidRequest, "dealer accounts require a name")
	InvalidAccessTokenErr = errors.Wrap(apperrors.ErrInvalidToken, "invalid access token")
)
