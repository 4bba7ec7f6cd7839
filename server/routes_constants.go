package server

// Route path constants
const (
	RouteIndex     = "/"
	RouteCallback  = "/callback"
	RouteTestLogin = "/testlogin/{username}"

	// RouteWebIndex is the default post-login landing page of the hosting
	// web client, used when LOGIN_REDIRECT is unset or invalid
	RouteWebIndex = "/webclient/"
)
