package config

import "time"

const (
	apiBaseURLVar = "API_BASE_URL"
	apiTimeoutVar = "API_TIMEOUT"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the address of the remote TV/customer API (e.g. "https://api.dogtv.com.br")
func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:3333")
}

func (API) GetAPITimeout() time.Duration {
	return GetDuration(apiTimeoutVar, 15*time.Second)
}
