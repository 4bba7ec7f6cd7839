// Package connector abstracts the web client's proprietary login handshake
// with the image-data server. The bridge hands it a freshly minted session
// token as both username and password; the server accepts a valid session
// token as a credential pair.
package connector

import "context"

// Connection is an established, logged-in server connection
type Connection interface {
	UpgradesURL() string
	Close()
}

// Connector performs the login handshake and version compatibility check
type Connector interface {
	CheckVersion(ctx context.Context, userAgent string) bool
	CreateConnection(ctx context.Context, userAgent, username, password, userIP string) (Connection, error)
}

// Factory builds a connector for the configured server
type Factory func() Connector
