package errors

import (
	"errors"
	"fmt"
)

// Common error types for the marketplace session and favorites stores
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken   = errors.New("invalid token")
	ErrRefreshInvalid = errors.New("refresh token rejected")

	// Transport errors
	ErrNetwork        = errors.New("network error")
	ErrServer         = errors.New("server error")
	ErrInvalidRequest = errors.New("invalid request")

	// Favorites errors
	ErrPersistence = errors.New("persistence failed")
	ErrSync        = errors.New("favorites sync failed")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Kind returns the first sentinel from the taxonomy found in err's chain, or nil.
// UI layers use it to pick a message for the failed action.
func Kind(err error) error {
	for _, target := range []error{
		ErrInvalidCredentials,
		ErrEmailExists,
		ErrRefreshInvalid,
		ErrUnauthorized,
		ErrInvalidRequest,
		ErrNetwork,
		ErrServer,
		ErrSync,
		ErrPersistence,
		ErrNotFound,
	} {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}
