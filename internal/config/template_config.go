package config

// TemplateConfig maps userinfo fields onto new account attributes. Each
// template is expanded against the provider's userinfo payload using
// {field} substitution, e.g. "{preferred_username}" or "{given_name}".
type TemplateConfig interface {
	GetUserNameTemplate() string
	GetUserEmailTemplate() string
	GetUserFirstNameTemplate() string
	GetUserLastNameTemplate() string
	GetGroupName() string
	GroupNameIsTimeTemplate() bool
	GetGroupPermissions() string
}

type Templates struct{}

var _ TemplateConfig = Templates{}

func (Templates) GetUserNameTemplate() string {
	return GetEnv("OAUTH_USER_NAME", "{login}")
}

func (Templates) GetUserEmailTemplate() string {
	return GetEnv("OAUTH_USER_EMAIL", "{email}")
}

func (Templates) GetUserFirstNameTemplate() string {
	return GetEnv("OAUTH_USER_FIRSTNAME", "{name}")
}

func (Templates) GetUserLastNameTemplate() string {
	return GetEnv("OAUTH_USER_LASTNAME", "{name}")
}

// GetGroupName returns the group new accounts are created in. When
// GroupNameIsTimeTemplate is true the value is a Go time layout expanded
// with the current time, e.g. "oauth-2006-01" for monthly groups.
func (Templates) GetGroupName() string {
	return GetEnv("OAUTH_GROUP_NAME", "oauth")
}

func (Templates) GroupNameIsTimeTemplate() bool {
	return GetEnv("OAUTH_GROUP_NAME_TEMPLATETIME", "") == "true"
}

func (Templates) GetGroupPermissions() string {
	return GetEnv("OAUTH_GROUP_PERMS", "rw----")
}
