package gateway

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/identity"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
)

// sessionEventType is the event type requested for bridged user sessions
const sessionEventType = "User"

// Config is the subset of configuration the account logic needs
type Config interface {
	GetGroupName() string
	GroupNameIsTimeTemplate() bool
	GetGroupPermissions() string
	GetUserSessionTimeout() time.Duration
}

// Accounts resolves provider identities to image-server accounts and mints
// sessions for them over a per-call administrative gateway.
type Accounts struct {
	newGateway     Factory
	groupName      string
	groupNameTime  bool
	groupPerms     string
	sessionTimeout time.Duration
}

func NewAccounts(factory Factory, cfg Config) *Accounts {
	return &Accounts{
		newGateway:     factory,
		groupName:      cfg.GetGroupName(),
		groupNameTime:  cfg.GroupNameIsTimeTemplate(),
		groupPerms:     cfg.GetGroupPermissions(),
		sessionTimeout: cfg.GetUserSessionTimeout(),
	}
}

// EnsureAccount looks the profile's account up by name, creating it (and its
// group, if needed) when absent, then mints a session token for it. Accounts
// are created non-admin, active, with no local password: authentication stays
// delegated to the provider.
//
// Concurrent first logins for the same name can race the create; this is not
// guarded here, the server's uniqueness constraint rejects the loser.
func (a *Accounts) EnsureAccount(ctx context.Context, profile identity.Profile) (uid int64, session string, err error) {
	adminc := a.newGateway()
	if err := adminc.Connect(ctx); err != nil {
		return 0, "", errors.Wrapf(errors.ErrAdminConnection, "%v", err)
	}
	defer adminc.Close()

	e, err := adminc.FindExperimenter(ctx, profile.Name)
	if err != nil {
		return 0, "", errors.Wrapf(err, "[Accounts EnsureAccount] looking up %q", profile.Name)
	}

	if e != nil {
		uid = e.ID
	} else {
		gid, err := a.ensureGroup(ctx, adminc)
		if err != nil {
			return 0, "", err
		}
		log.Info().Str("omename", profile.Name).Int64("group", gid).Msg("Creating new oauth user")
		uid, err = adminc.CreateExperimenter(ctx, Experimenter{
			OmeName:   profile.Name,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Email:     profile.Email,
			Admin:     false,
			Active:    true,
		}, gid)
		if err != nil {
			return 0, "", errors.Wrapf(err, "[Accounts EnsureAccount] creating %q", profile.Name)
		}
	}

	session, err = a.sessionFor(ctx, adminc, profile.Name)
	if err != nil {
		return 0, "", err
	}
	return uid, session, nil
}

// SessionForUser mints a session for an existing account without touching
// the provider. Used by the development test-login route.
func (a *Accounts) SessionForUser(ctx context.Context, omeName string) (string, error) {
	adminc := a.newGateway()
	if err := adminc.Connect(ctx); err != nil {
		return "", errors.Wrapf(errors.ErrAdminConnection, "%v", err)
	}
	defer adminc.Close()

	e, err := adminc.FindExperimenter(ctx, omeName)
	if err != nil {
		return "", errors.Wrapf(err, "[Accounts SessionForUser] looking up %q", omeName)
	}
	if e == nil {
		return "", errors.Wrapf(errors.ErrAccountNotFound, "%q", omeName)
	}

	return a.sessionFor(ctx, adminc, omeName)
}

func (a *Accounts) ensureGroup(ctx context.Context, adminc Gateway) (int64, error) {
	groupname := a.groupName
	if a.groupNameTime {
		groupname = time.Now().Format(groupname)
	}

	g, err := adminc.FindGroup(ctx, groupname)
	if err != nil {
		return 0, errors.Wrapf(err, "[Accounts ensureGroup] looking up %q", groupname)
	}
	if g != nil {
		return g.ID, nil
	}

	log.Info().Str("group", groupname).Str("permissions", a.groupPerms).Msg("Creating new oauth group")
	gid, err := adminc.CreateGroup(ctx, groupname, a.groupPerms)
	if err != nil {
		return 0, errors.Wrapf(err, "[Accounts ensureGroup] creating %q", groupname)
	}
	return gid, nil
}

func (a *Accounts) sessionFor(ctx context.Context, adminc Gateway, omeName string) (string, error) {
	session, err := adminc.CreateSessionWithTimeout(ctx, Principal{
		Name:      omeName,
		EventType: sessionEventType,
	}, a.sessionTimeout)
	if err != nil {
		return "", errors.Wrapf(errors.ErrSessionFailed, "for %q: %v", omeName, err)
	}
	log.Debug().Str("omename", omeName).Msg("Created new oauth session")
	return session, nil
}
