package server

import (
	"crypto/rand"
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-bridge/server/websession"
	"github.com/rs/zerolog/log"
)

const (
	// sessionCookieName is the cookie carrying the browser session ID
	sessionCookieName = "oauthBridgeSession"

	contentTypeHTML = "text/html; charset=utf-8"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// browserSessionID returns the request's session ID, minting one (and
// setting the cookie) when the request carries none.
func (s *Server) browserSessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sessionID := uuid.New().String()
	s.setSessionCookie(w, r, sessionID)
	return sessionID
}

// browserSession loads the stored session for the request, or a zero value
func (s *Server) browserSession(r *http.Request) (string, websession.Session) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", websession.Session{}
	}
	session, err := s.webSessions.Get(cookie.Value)
	if err != nil {
		return cookie.Value, websession.Session{}
	}
	return cookie.Value, session
}

// clientIP extracts the originating client address, preferring the first
// X-Forwarded-For entry when the bridge sits behind a proxy
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loginRedirectURL resolves the post-login landing page. An unset or
// unparseable LOGIN_REDIRECT falls back to the web client's index.
func (s *Server) loginRedirectURL() string {
	configured := s.config.GetLoginRedirect()
	if configured == "" {
		return RouteWebIndex
	}
	u, err := url.Parse(configured)
	if err != nil {
		log.Warn().Str("login_redirect", configured).Msg("Invalid LOGIN_REDIRECT, using default")
		return RouteWebIndex
	}
	if u.Scheme == "" && !strings.HasPrefix(configured, "/") {
		log.Warn().Str("login_redirect", configured).Msg("LOGIN_REDIRECT is neither absolute nor a path, using default")
		return RouteWebIndex
	}
	return configured
}

func accessDenied(w http.ResponseWriter, err error) {
	log.Warn().Err(err).Msg("Access denied")
	http.Error(w, "Access denied: "+err.Error(), http.StatusForbidden)
}
