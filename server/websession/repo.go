package websession

import "time"

// Session is the per-browser state kept by the bridge: the pending CSRF
// state during the OAuth handshake, then the image-server session token
// once logged in. The state is single use; it is cleared when checked.
type Session struct {
	State         string
	ServerSession string
	CreatedAt     time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
