package config

import "strings"

// OAuthConfig describes the external identity provider. Either the three
// explicit endpoint URLs are set, or an issuer URL is set and the endpoints
// are discovered from /.well-known/openid-configuration.
type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetClientName() string
	GetScopes() []string
	GetIssuer() string
	GetAuthorizationURL() string
	GetTokenURL() string
	GetUserinfoURL() string
	GetRedirectURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

// GetClientName returns the provider display name shown on the sign-in page
func (OAuth) GetClientName() string {
	return GetEnv("OAUTH_CLIENT_NAME", "OAuth provider")
}

func (OAuth) GetScopes() []string {
	return strings.Fields(GetEnv("OAUTH_CLIENT_SCOPE", "openid"))
}

func (OAuth) GetIssuer() string {
	return GetEnv("OAUTH_ISSUER", "")
}

func (OAuth) GetAuthorizationURL() string {
	return GetEnv("OAUTH_URL_AUTHORIZATION", "")
}

func (OAuth) GetTokenURL() string {
	return GetEnv("OAUTH_URL_TOKEN", "")
}

func (OAuth) GetUserinfoURL() string {
	return GetEnv("OAUTH_URL_USERINFO", "")
}

func (OAuth) GetRedirectURL() string {
	return GetEnv("OAUTH_REDIRECT_URL", "")
}
