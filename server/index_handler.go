package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/connector"
	"github.com/jrsteele09/go-oauth-bridge/server/websession"
	"github.com/rs/zerolog/log"
)

// SignInPageData contains data for rendering the sign-in page
type SignInPageData struct {
	AppName          string
	ClientName       string
	AuthorizationURL string
}

// IndexHandler serves the sign-in page, or redirects straight to the web
// client when the browser already holds a valid server session (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("signin.html")
	if err != nil {
		panic("Failed to parse signin template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if s.handleLoggedIn(w, r) {
			return
		}
		s.handleNotLoggedIn(w, r, tmpl)
	}
}

// handleLoggedIn redirects to the post-login landing page when the request
// resolves to a live server connection. Returns false otherwise.
func (s *Server) handleLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	conn := s.resolveConnection(r)
	if conn == nil {
		return false
	}
	conn.Close()

	http.Redirect(w, r, s.loginRedirectURL(), http.StatusSeeOther)
	return true
}

// resolveConnection tries to turn the browser's stored server session into a
// live connection. Any failure is swallowed: the caller falls back to the
// sign-in page.
func (s *Server) resolveConnection(r *http.Request) connector.Connection {
	_, session := s.browserSession(r)
	if session.ServerSession == "" {
		return nil
	}

	conn, err := s.newConnector().CreateConnection(r.Context(), userAgent,
		session.ServerSession, session.ServerSession, clientIP(r))
	if err != nil {
		log.Debug().Err(err).Msg("Stored server session no longer valid")
		return nil
	}
	return conn
}

// handleNotLoggedIn stores a fresh CSRF state in the browser session and
// renders the sign-in page with the provider authorization link
func (s *Server) handleNotLoggedIn(w http.ResponseWriter, r *http.Request, tmpl *template.Template) {
	sessionID := s.browserSessionID(w, r)

	session, err := s.webSessions.Get(sessionID)
	if err != nil {
		session = websession.Session{CreatedAt: time.Now()}
	}
	session.State = generateRandomString(32)

	if err := s.webSessions.Upsert(sessionID, session); err != nil {
		log.Err(err).Msg("Failed to store oauth state")
		http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}

	data := SignInPageData{
		AppName:          s.config.GetAppName(),
		ClientName:       s.provider.ClientName(),
		AuthorizationURL: s.provider.AuthCodeURL(session.State),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render signin template")
		http.Error(w, "Failed to render sign-in page", http.StatusInternalServerError)
	}
}
