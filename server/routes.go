package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.CallbackHandler())

	// Development bypass: mints a session for a named account without any
	// provider round trip. See WebConfig.GetTestLoginSecretHash.
	s.RegisterRouteFunc("GET "+RouteTestLogin, s.TestLoginHandler())
}
