package auth

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/token"
	tokenjwt "github.com/jrsteele09/go-salvage-market/token/jwt"
	"github.com/jrsteele09/go-salvage-market/users"
)

// AccountService implements the Account Service operations behind /auth
type AccountService struct {
	users     users.UserRepo
	tokens    *token.Manager
	validator *Validator
	nowTime   func() time.Time
}

type AccountServiceOption func(*AccountService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AccountServiceOption {
	return func(as *AccountService) {
		as.nowTime = nowFunc
	}
}

func NewAccountService(userRepo users.UserRepo, tokens *token.Manager, options ...AccountServiceOption) (*AccountService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAccountService] Users repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAccountService] token manager is required")
	}

	as := &AccountService{
		users:     userRepo,
		tokens:    tokens,
		validator: NewValidator(),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Login checks the credentials and issues a token pair
func (as *AccountService) Login(req authmodel.LoginRequest) (*authmodel.AuthResponse, error) {
	if err := as.validator.ValidateUserCredentials(req.Email, req.Password); err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidRequest, err.Error())
	}

	user, err := as.users.GetByEmail(req.Email)
	if err != nil {
		// Same error as a wrong password
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Login] unknown email")
	}
	if !user.CheckPassword(req.Password) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Login] password mismatch")
	}
	if err := as.validator.ValidateUserState(user); err != nil {
		return nil, errors.Wrap(apperrors.ErrUserInactive, err.Error())
	}

	resp, err := as.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] Issue")
	}
	log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user logged in")
	return resp, nil
}

// Register creates a BUYER or DEALER account and signs it in
func (as *AccountService) Register(req authmodel.RegisterRequest) (*authmodel.AuthResponse, error) {
	role, err := as.validator.ValidateRegistration(req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.Wrap(apperrors.ErrInvalidRequest, err.Error())
	}

	if _, err := as.users.GetByEmail(req.Email); err == nil {
		return nil, errors.Wrap(apperrors.ErrEmailExists, "[Register]")
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] HashPassword")
	}
	now := as.nowTime()
	user := &users.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: hash,
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Website:      req.Website,
	}
	if err := as.users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Register] Upsert")
	}

	resp, err := as.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] Issue")
	}
	log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user registered")
	return resp, nil
}

// Refresh rotates the refresh token. Rejections wrap ErrRefreshInvalid.
func (as *AccountService) Refresh(refreshToken string) (*authmodel.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.Wrap(apperrors.ErrRefreshInvalid, "[Refresh] refresh token is required")
	}
	return as.tokens.Refresh(refreshToken)
}

// Logout revokes the access token when given and drops the refresh token. It never fails.
func (as *AccountService) Logout(accessToken, refreshToken string) {
	if accessToken != "" {
		if err := as.tokens.RevokeAccessToken(accessToken); err != nil {
			log.Debug().Err(err).Msg("logout: access token not revoked")
		}
	}
	if refreshToken != "" {
		as.tokens.InvalidateRefreshToken(refreshToken)
	}
}

// Authenticate validates a bearer token
func (as *AccountService) Authenticate(accessToken string) (*tokenjwt.TokenIntrospection, error) {
	if err := as.validator.ValidateAccessToken(accessToken); err != nil {
		return nil, errors.Wrap(InvalidAccessTokenErr, err.Error())
	}
	info, err := as.tokens.Introspection(accessToken)
	if err != nil || info == nil || !info.Active {
		return nil, InvalidAccessTokenErr
	}
	return info, nil
}

// Profile returns the user owning accessToken
func (as *AccountService) Profile(accessToken string) (*users.User, error) {
	info, err := as.Authenticate(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := as.users.GetByID(info.Sub)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUserNotFound, "[Profile]")
	}
	return user.Public(), nil
}

// SetActive enables or disables an account. Disabling drops the user's refresh token.
func (as *AccountService) SetActive(email string, active bool) error {
	user, err := as.users.GetByEmail(email)
	if err != nil {
		return errors.Wrap(apperrors.ErrUserNotFound, "[SetActive]")
	}
	if err := as.users.SetActive(email, active); err != nil {
		return errors.Wrap(err, "[SetActive]")
	}
	if !active {
		as.tokens.InvalidateUser(user.ID)
	}
	return nil
}

// ListUsers pages through the accounts, without password hashes
func (as *AccountService) ListUsers(offset, limit int) ([]*users.User, error) {
	list, err := as.users.List(offset, limit)
	if err != nil {
		return nil, errors.Wrap(err, "[ListUsers]")
	}
	ret := make([]*users.User, 0, len(list))
	for _, u := range list {
		ret = append(ret, u.Public())
	}
	return ret, nil
}
