package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-salvage-market/token/keys"
)

// TokenIntrospection describes an access token. When Active is false the other fields may
// be empty.
type TokenIntrospection struct {
	Active bool      `json:"active"`          // Signature valid, not expired, not revoked
	Sub    string    `json:"sub,omitempty"`   // User ID
	Email  string    `json:"email,omitempty"` // User email at issue time
	Role   string    `json:"role,omitempty"`  // Marketplace role at issue time
	Iss    string    `json:"iss,omitempty"`
	Jti    string    `json:"jti,omitempty"` // Unique token ID
	Exp    time.Time `json:"exp,omitempty"`
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector validates access tokens and extracts their claims
type Inspector struct {
	signer         keys.Signer
	revokedChecker RevokedChecker
	nowFunc        func() time.Time
}

func NewInspector(signer keys.Signer, revokedChecker RevokedChecker, nowFunc func() time.Time) *Inspector {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Inspector{
		signer:         signer,
		revokedChecker: revokedChecker,
		nowFunc:        nowFunc,
	}
}

// Introspect validates rawToken. An empty token is inactive without an error.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	claims, err := i.parse(rawToken)
	if err != nil {
		return &TokenIntrospection{Active: false}, err
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	iss, _ := claims["iss"].(string)
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	expTime := time.Unix(int64(exp), 0)

	active := !i.nowFunc().After(expTime)
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		active = false
	}

	return &TokenIntrospection{
		Active: active,
		Sub:    sub,
		Email:  email,
		Role:   role,
		Iss:    iss,
		Jti:    jti,
		Exp:    expTime,
	}, nil
}

// ParseAndExtractJTI verifies rawToken and returns the claims needed to revoke it
func (i *Inspector) ParseAndExtractJTI(rawToken string) (jti string, exp time.Time, err error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return "", time.Time{}, err
	}

	jtiClaim, ok := claims["jti"].(string)
	if !ok || jtiClaim == "" {
		return "", time.Time{}, errors.New("token missing jti claim")
	}

	expClaim, ok := claims["exp"].(float64)
	if !ok {
		return "", time.Time{}, errors.New("token missing exp claim")
	}
	return jtiClaim, time.Unix(int64(expClaim), 0), nil
}

// parse verifies the signature only. Expiry is judged against nowFunc by the callers.
func (i *Inspector) parse(rawToken string) (jwtlib.MapClaims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}
	return claims, nil
}
