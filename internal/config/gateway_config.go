package config

import (
	"strconv"
	"time"
)

// GatewayConfig describes the administrative connection to the image-data
// server used to look up and provision accounts.
type GatewayConfig interface {
	GetServerURL() string
	GetAdminUsername() string
	GetAdminPassword() string
	IsSecure() bool
	GetUserSessionTimeout() time.Duration
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetServerURL() string {
	return GetEnv("OAUTH_SERVER_URL", "https://localhost:4064")
}

func (Gateway) GetAdminUsername() string {
	return GetEnv("OAUTH_ADMIN_USERNAME", "root")
}

func (Gateway) GetAdminPassword() string {
	return GetEnv("OAUTH_ADMIN_PASSWORD", "")
}

func (Gateway) IsSecure() bool {
	return GetEnv("OAUTH_SECURE", "true") == "true"
}

// GetUserSessionTimeout returns the absolute timeout requested for user
// sessions, relative to creation time.
func (Gateway) GetUserSessionTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("OAUTH_USER_TIMEOUT", "86400"))
	if err != nil || seconds <= 0 {
		seconds = 86400
	}
	return time.Duration(seconds) * time.Second
}
