package config

// WebConfig covers the hosting web-client integration: where to send the
// browser once logged in, whether to version-check the server before the
// login handshake, and the optional guard on the dev test-login route.
type WebConfig interface {
	GetLoginRedirect() string
	CheckVersion() bool
	GetUpgradesURL() string
	GetTestLoginSecretHash() string
}

type Web struct{}

var _ WebConfig = Web{}

func (Web) GetLoginRedirect() string {
	return GetEnv("LOGIN_REDIRECT", "")
}

func (Web) CheckVersion() bool {
	return GetEnv("CHECK_VERSION", "true") == "true"
}

func (Web) GetUpgradesURL() string {
	return GetEnv("UPGRADES_URL", "")
}

// GetTestLoginSecretHash returns a bcrypt hash. When set, /testlogin
// requires a matching "secret" query parameter. Empty disables the guard.
func (Web) GetTestLoginSecretHash() string {
	return GetEnv("TESTLOGIN_SECRET_HASH", "")
}
