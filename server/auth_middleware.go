package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	tokenjwt "github.com/jrsteele09/go-salvage-market/token/jwt"
	"github.com/jrsteele09/go-salvage-market/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyClaims stores the introspected access token
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyAccessToken stores the raw bearer token
	ContextKeyAccessToken ContextKey = "access_token"
)

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireAuth is middleware that validates a Bearer access token and injects its claims
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="salvage-market"`)
				writeErrorResponse(w, http.StatusUnauthorized, authmodel.CodeUnauthorized, "missing bearer token")
				return
			}

			claims, err := s.accounts.Authenticate(token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Sub)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin is middleware that validates the ADMIN role.
// Should be chained after RequireAuth to ensure claims are present
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFromContext(r.Context())
			if !ok || users.RoleType(claims.Role) != users.RoleAdmin {
				writeErrorResponse(w, http.StatusForbidden, authmodel.CodeForbidden, "admin access required")
				return
			}
			next(w, r)
		}
	}
}

func claimsFromContext(ctx context.Context) (*tokenjwt.TokenIntrospection, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*tokenjwt.TokenIntrospection)
	return claims, ok && claims != nil
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ContextKeyUserID).(string)
	return userID
}
