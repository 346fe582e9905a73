package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetTokenCookieName() string
	GetTokenMaxAge() time.Duration
	GetMaxSessionAge() time.Duration
	GetPendingWait() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret returns the secret the token cookie is sealed with.
// Empty means a random key is generated per process.
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Security) GetTokenCookieName() string {
	return GetEnv("TOKEN_COOKIE", "token")
}

func (Security) GetTokenMaxAge() time.Duration {
	return GetDuration("TOKEN_MAX_AGE", 7*24*time.Hour)
}

// GetMaxSessionAge bounds how long a verified session is reused before the token is verified again
func (Security) GetMaxSessionAge() time.Duration {
	return GetDuration("SESSION_MAX_AGE", 30*time.Minute)
}

func (Security) GetPendingWait() time.Duration {
	return GetDuration("PENDING_WAIT", 2*time.Second)
}
