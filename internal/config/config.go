package config

type Config interface {
	EnvConfig
	OAuthConfig
	TemplateConfig
	GatewayConfig
	WebConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Templates
	Gateway
	Web
}

func New() Config {
	return mainConfig{}
}
