// Package gateway defines the administrative capability interface against
// the image-data server: account lookup and provisioning, and minting of
// time-limited sessions on behalf of other users.
package gateway

import (
	"context"
	"time"
)

type Experimenter struct {
	ID        int64
	OmeName   string
	FirstName string
	LastName  string
	Email     string
	Admin     bool
	Active    bool
}

type Group struct {
	ID          int64
	Name        string
	Permissions string
}

// Principal is the server-side identity descriptor used when requesting a
// session on behalf of a named user.
type Principal struct {
	Name      string
	EventType string
}

// Gateway is a privileged client connection to the image-data server.
// Find methods return (nil, nil) when no matching object exists.
type Gateway interface {
	Connect(ctx context.Context) error
	Close()
	FindExperimenter(ctx context.Context, omeName string) (*Experimenter, error)
	FindGroup(ctx context.Context, name string) (*Group, error)
	CreateGroup(ctx context.Context, name, permissions string) (int64, error)
	CreateExperimenter(ctx context.Context, e Experimenter, defaultGroupID int64) (int64, error)
	CreateSessionWithTimeout(ctx context.Context, p Principal, timeout time.Duration) (string, error)
}

// Factory dials a fresh administrative gateway. Account operations acquire
// one per request and release it when done.
type Factory func() Gateway
