package server

import (
	"net/http"

	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TestLoginHandler logs a named account in without any provider round trip
// (GET /testlogin/{username}). Development only; when TESTLOGIN_SECRET_HASH
// is configured the "secret" query parameter must match it.
func (s *Server) TestLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hash := s.config.GetTestLoginSecretHash(); hash != "" {
			secret := r.URL.Query().Get("secret")
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
				accessDenied(w, errors.Wrapf(errors.ErrAccessDenied, "invalid test login secret"))
				return
			}
		}

		username := r.PathValue("username")
		if username == "" {
			http.Error(w, "Missing username", http.StatusBadRequest)
			return
		}

		serverSession, err := s.accounts.SessionForUser(r.Context(), username)
		if err != nil {
			log.Err(err).Str("omename", username).Msg("Test login failed")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		log.Info().Str("omename", username).Msg("Test login session created")

		sessionID := s.browserSessionID(w, r)
		s.loginWithSession(w, r, sessionID, serverSession)
	}
}
