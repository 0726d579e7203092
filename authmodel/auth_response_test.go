package authmodel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthResponseDecodesCamelCase(t *testing.T) {
	body := `{"accessToken":"tok1","refreshToken":"ref1","role":"ADMIN","email":"admin@test.com","expiresIn":3600,"id":"u1"}`
	var r AuthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	require.Equal(t, "tok1", r.AccessToken)
	require.Equal(t, "ref1", r.RefreshToken)
	require.Equal(t, "ADMIN", r.Role)
	require.Equal(t, time.Hour, r.Lifetime())
}

func TestAuthResponseToken(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tok := AuthResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60}.Token(now)
	require.Equal(t, "a", tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, now.Add(time.Minute), tok.Expiry)

	noExpiry := AuthResponse{AccessToken: "a"}.Token(now)
	require.True(t, noExpiry.Expiry.IsZero())
}
