package server

import (
	"net/http"

	"github.com/jrsteele09/go-oauth-bridge/identity"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
)

// CallbackHandler completes the OAuth handshake (GET /callback): validates
// the CSRF state, exchanges the code, resolves the userinfo into a server
// account and logs the browser in with a freshly minted server session.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, session := s.browserSession(r)

		// Reject before any provider round trip
		if err := validateCallback(session.State, r); err != nil {
			accessDenied(w, err)
			return
		}

		// State is single use
		session.State = ""
		if err := s.webSessions.Upsert(sessionID, session); err != nil {
			log.Err(err).Msg("Failed to clear oauth state")
			http.Error(w, "Sign-in failed", http.StatusInternalServerError)
			return
		}

		token, err := s.provider.Exchange(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			log.Err(err).Msg("Token exchange failed")
			http.Error(w, "Sign-in failed", http.StatusInternalServerError)
			return
		}

		fields, err := s.provider.Userinfo(r.Context(), token)
		if err != nil {
			log.Err(err).Msg("Userinfo request failed")
			http.Error(w, "Sign-in failed", http.StatusInternalServerError)
			return
		}

		profile, err := identity.ResolveProfile(s.templates, fields)
		if err != nil {
			log.Err(err).Msg("Userinfo does not satisfy the configured templates")
			http.Error(w, "Sign-in failed", http.StatusInternalServerError)
			return
		}

		uid, serverSession, err := s.accounts.EnsureAccount(r.Context(), profile)
		if err != nil {
			log.Err(err).Str("omename", profile.Name).Msg("Account resolution failed")
			http.Error(w, "Sign-in failed", http.StatusInternalServerError)
			return
		}
		log.Info().Str("omename", profile.Name).Int64("uid", uid).Msg("Resolved oauth account")

		s.loginWithSession(w, r, sessionID, serverSession)
	}
}

// validateCallback checks the redirect parameters against the stored CSRF
// state before any provider round trip happens
func validateCallback(storedState string, r *http.Request) error {
	if storedState == "" {
		return errors.ErrStateMissing
	}
	if r.URL.Query().Get("code") == "" {
		return errors.ErrCodeMissing
	}
	if r.URL.Query().Get("state") != storedState {
		return errors.ErrStateInvalid
	}
	return nil
}
