package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/connector"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/jrsteele09/go-oauth-bridge/server/websession"
	"github.com/rs/zerolog/log"
)

// loginWithSession performs the web client's login handshake with a server
// session token standing in for both username and password, stores the token
// in the browser session and redirects to the landing page. Shared by the
// callback and test-login paths.
func (s *Server) loginWithSession(w http.ResponseWriter, r *http.Request, sessionID, serverSession string) {
	conn := s.newConnector()

	if s.config.CheckVersion() && !conn.CheckVersion(r.Context(), userAgent) {
		log.Err(errors.ErrIncompatibleServer).Msg("Server failed the version compatibility check")
		http.Error(w, "Incompatible server", http.StatusInternalServerError)
		return
	}

	connection, err := conn.CreateConnection(r.Context(), userAgent, serverSession, serverSession, clientIP(r))
	if err != nil || connection == nil {
		log.Err(err).Msg("Failed to login with session")
		http.Error(w, "Failed to login with session", http.StatusInternalServerError)
		return
	}
	defer connection.Close()

	session, err := s.webSessions.Get(sessionID)
	if err != nil {
		session = websession.Session{}
	}
	session.ServerSession = serverSession
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if err := s.webSessions.Upsert(sessionID, session); err != nil {
		log.Err(err).Msg("Failed to store server session")
		http.Error(w, "Sign-in failed", http.StatusInternalServerError)
		return
	}

	s.upgradeCheck(r.Context(), connection)

	http.Redirect(w, r, s.loginRedirectURL(), http.StatusSeeOther)
}

// upgradeCheck pings the upgrade-notice URL so operators see outdated
// deployments in their server logs. Never fatal.
func (s *Server) upgradeCheck(ctx context.Context, connection connector.Connection) {
	upgradesURL := s.config.GetUpgradesURL()
	if upgradesURL == "" {
		upgradesURL = connection.UpgradesURL()
	}
	if upgradesURL == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upgradesURL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", userAgent)

	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", upgradesURL).Msg("Upgrade check failed")
		return
	}
	rsp.Body.Close()
}
