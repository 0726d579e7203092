package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	"github.com/jrsteele09/go-salvage-market/users"
)

// Validator holds the request validation rules of the account endpoints
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAccessToken validates access token format and presence
func (v *Validator) ValidateAccessToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	// Basic format check - should be a JWT (3 parts separated by dots)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid token format: must be a valid JWT")
	}
	for i, part := range parts {
		if len(part) == 0 {
			return fmt.Errorf("invalid token format: part %d is empty", i+1)
		}
	}
	return nil
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateRegistration checks a sign up request. Only BUYER and DEALER may self register.
func (v *Validator) ValidateRegistration(req authmodel.RegisterRequest) (users.RoleType, error) {
	if err := validateEmail(req.Email); err != nil {
		return "", err
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return "", err
	}

	role := users.RoleBuyer
	if strings.TrimSpace(req.Role) != "" {
		var err error
		if role, err = users.ParseRole(req.Role); err != nil {
			return "", err
		}
	}
	switch role {
	case users.RoleAdmin:
		return "", AdminRegistrationErr
	case users.RoleDealer:
		if strings.TrimSpace(req.Name) == "" {
			return "", DealerNameRequiredErr
		}
	}
	return role, nil
}

// ValidateUserState validates user account state
func (v *Validator) ValidateUserState(user *users.User) error {
	if user == nil {
		return fmt.Errorf("user not found")
	}
	if !user.IsActive {
		return fmt.Errorf("user account is inactive")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// Basic email format validation
	at := strings.Index(email, "@")
	if at < 1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}
