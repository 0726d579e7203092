// Package authmodel holds the Account Service wire contracts shared by the client
// stores and the reference server.
package authmodel

import (
	"time"

	"golang.org/x/oauth2"
)

// AuthResponse is returned by /auth/login, /auth/register and /auth/refresh.
type AuthResponse struct {
	// AccessToken is the short lived bearer credential.
	AccessToken string `json:"accessToken"`

	// RefreshToken is the long lived credential exchanged at /auth/refresh.
	// Rotates on each use.
	RefreshToken string `json:"refreshToken"`

	// Role is one of ADMIN, DEALER or BUYER.
	Role string `json:"role"`

	Email string `json:"email"`

	// ExpiresIn is the access token lifetime in seconds. Zero when the server omits it.
	ExpiresIn int `json:"expiresIn,omitempty"`

	// ID is the user identifier.
	ID string `json:"id"`
}

// Token converts the response into an oauth2.Token. now is the instant the response was received.
func (r AuthResponse) Token(now time.Time) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
	}
	if r.ExpiresIn > 0 {
		t.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
		t.ExpiresIn = int64(r.ExpiresIn)
	}
	return t
}

// Lifetime returns the reported access token lifetime, or zero when unknown.
func (r AuthResponse) Lifetime() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}
