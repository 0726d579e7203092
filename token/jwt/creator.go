package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/go-salvage-market/token/keys"
	"github.com/jrsteele09/go-salvage-market/users"
)

// Creator handles access token creation
type Creator struct {
	issuer  string
	expiry  time.Duration
	signer  keys.Signer
	nowFunc func() time.Time
}

type CreatorOption func(*Creator)

func WithNowFunc(now func() time.Time) CreatorOption {
	return func(c *Creator) {
		c.nowFunc = now
	}
}

func NewCreator(issuer string, expiry time.Duration, signer keys.Signer, options ...CreatorOption) *Creator {
	c := &Creator{
		issuer:  issuer,
		expiry:  expiry,
		signer:  signer,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Expiry is the access token lifetime
func (c *Creator) Expiry() time.Duration {
	return c.expiry
}

// CreateAccessToken signs a token for user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := c.nowFunc()
	claims := jwtlib.MapClaims{
		"iss":   c.issuer,                 // The issuer of the token
		"sub":   user.ID,                  // The user the token was issued to
		"email": user.Email,               // Convenience claim for display
		"role":  string(user.Role),        // Marketplace role
		"iat":   now.Unix(),               // Issued At: the time at which the token was issued
		"exp":   now.Add(c.expiry).Unix(), // Expiry: when the token will expire
		"jti":   uuid.New().String(),      // Unique token ID for revocation
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}
