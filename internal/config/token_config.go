package config

import "time"

const (
	accessTokenTTLVar  = "ACCESS_TOKEN_TTL"
	refreshTokenTTLVar = "REFRESH_TOKEN_TTL"
	renewalIntervalVar = "SESSION_RENEWAL_INTERVAL"

	defaultAccessTokenExpiry = time.Hour
	// renewal margin: 50 minutes against a 60 minute token
	renewalRatioNumerator   = 5
	renewalRatioDenominator = 6
)

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv(accessTokenTTLVar, defaultAccessTokenExpiry)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv(refreshTokenTTLVar, 7*24*time.Hour)
}

func (Tokens) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetSessionRenewalInterval returns the configured renewal period, clamped below the access token lifetime.
func (t Tokens) GetSessionRenewalInterval() time.Duration {
	lifetime := t.GetAccessTokenExpiry()
	fallback := RenewalIntervalFor(lifetime)
	interval := GetDurationEnv(renewalIntervalVar, fallback)
	if interval >= lifetime {
		return fallback
	}
	return interval
}

// RenewalIntervalFor keeps the same margin as 50 minutes out of 60 for any token lifetime.
func RenewalIntervalFor(lifetime time.Duration) time.Duration {
	return lifetime * renewalRatioNumerator / renewalRatioDenominator
}
