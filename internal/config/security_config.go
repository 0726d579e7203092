package config

const (
	jwtSecretVar           = "JWT_SECRET"
	issuerVar              = "JWT_ISSUER"
	systemAdminEmailVar    = "SYSTEM_ADMIN_EMAIL"
	systemAdminPasswordVar = "SYSTEM_ADMIN_PASSWORD"
)

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "dev-only-secret-change-me")
}

func (Security) GetIssuer() string {
	return GetEnv(issuerVar, "salvage-market")
}

func (Security) GetSystemAdminEmail() string {
	return GetEnv(systemAdminEmailVar, "admin@test.com")
}

// GetSystemAdminPassword returns the bootstrap admin password. Empty means generate one.
func (Security) GetSystemAdminPassword() string {
	return GetEnv(systemAdminPasswordVar, "")
}
