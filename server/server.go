package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-bridge/connector"
	"github.com/jrsteele09/go-oauth-bridge/gateway"
	"github.com/jrsteele09/go-oauth-bridge/identity"
	"github.com/jrsteele09/go-oauth-bridge/internal/config"
	"github.com/jrsteele09/go-oauth-bridge/provider"
	"github.com/jrsteele09/go-oauth-bridge/server/websession"
)

// userAgent identifies the bridge to the image server's login machinery
const userAgent = "OAuth.bridge"

type Server struct {
	env          string // Environment (e.g., "development", "production")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	provider     *provider.Client
	accounts     *gateway.Accounts
	newConnector connector.Factory
	webSessions  websession.Repo
	templates    identity.Templates
}

func New(cfg config.Config, providerClient *provider.Client, accounts *gateway.Accounts, connectorFactory connector.Factory, sessionRepo websession.Repo) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		provider:     providerClient,
		accounts:     accounts,
		newConnector: connectorFactory,
		webSessions:  sessionRepo,
		templates: identity.Templates{
			Name:      cfg.GetUserNameTemplate(),
			Email:     cfg.GetUserEmailTemplate(),
			FirstName: cfg.GetUserFirstNameTemplate(),
			LastName:  cfg.GetUserLastNameTemplate(),
		},
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
