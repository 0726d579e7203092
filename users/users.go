package users

import (
	"fmt"
	"strings"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the marketplace role a user account holds
type RoleType string

const (
	RoleAdmin  RoleType = "ADMIN"  // Can moderate listings, dealers and users
	RoleDealer RoleType = "DEALER" // Can list vehicles for sale
	RoleBuyer  RoleType = "BUYER"  // Can browse, favorite and contact dealers
)

// ParseRole converts a wire value into a RoleType, case-insensitively
func ParseRole(role string) (RoleType, error) {
	switch r := RoleType(strings.ToUpper(strings.TrimSpace(role))); r {
	case RoleAdmin, RoleDealer, RoleBuyer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", role)
}

type User struct {
	ID           string    `json:"id"`                // Unique identifier for the user
	Email        string    `json:"email"`             // User's email address
	Role         RoleType  `json:"role"`              // Marketplace role
	IsActive     bool      `json:"isActive"`          // Inactive accounts cannot log in
	CreatedAt    time.Time `json:"createdAt"`         // Date and time when the user registered
	UpdatedAt    time.Time `json:"updatedAt"`         // Last profile change
	PasswordHash string    `json:"-"`                 // Hashed version of the user's password - never serialize
	Name         string    `json:"name,omitempty"`    // Dealer or display name
	Address      string    `json:"address,omitempty"` // Dealer address
	Phone        string    `json:"phone,omitempty"`   // Dealer phone
	Website      string    `json:"website,omitempty"` // Dealer website
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsDealer() bool {
	return u.Role == RoleDealer
}

// Public returns a copy of the user that is safe to hand to other packages
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}
