package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetAPIURL() string
	GetDataURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// TokenConfig holds token lifetimes shared by the account service and the session store.
// The session renewal interval must stay below the access token lifetime.
type TokenConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetSessionRenewalInterval() time.Duration
}

type SecurityConfig interface {
	GetJWTSecret() string
	GetIssuer() string
	GetSystemAdminEmail() string
	GetSystemAdminPassword() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Security
}

func New() Config {
	return mainConfig{}
}
