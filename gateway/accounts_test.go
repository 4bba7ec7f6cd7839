package gateway_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/gateway"
	"github.com/jrsteele09/go-oauth-bridge/gateway/gatewayfakes"
	"github.com/jrsteele09/go-oauth-bridge/identity"
	bridgeerrors "github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/stretchr/testify/require"
)

type testAccountsConfig struct {
	groupName     string
	groupNameTime bool
}

func (c testAccountsConfig) GetGroupName() string {
	if c.groupName == "" {
		return "oauth"
	}
	return c.groupName
}
func (c testAccountsConfig) GroupNameIsTimeTemplate() bool        { return c.groupNameTime }
func (c testAccountsConfig) GetGroupPermissions() string          { return "rw----" }
func (c testAccountsConfig) GetUserSessionTimeout() time.Duration { return 15 * time.Minute }

var aliceProfile = identity.Profile{
	Name:      "alice",
	Email:     "a@example.org",
	FirstName: "Alice",
	LastName:  "Liddell",
}

func newAccounts(fake *gatewayfakes.FakeGateway, cfg testAccountsConfig) *gateway.Accounts {
	return gateway.NewAccounts(func() gateway.Gateway { return fake }, cfg)
}

func TestEnsureAccount_ExistingUser(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	uid := fake.AddExperimenter(gateway.Experimenter{OmeName: "alice"})

	accounts := newAccounts(fake, testAccountsConfig{})

	gotUID, session, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.NoError(t, err)
	require.Equal(t, uid, gotUID)
	require.NotEmpty(t, session)
	require.NotEqual(t, strconv.FormatInt(gotUID, 10), session)

	// existing account means no creation of any kind
	require.Zero(t, fake.CreateGroupCalls)
	require.Zero(t, fake.CreateExperimenterCalls)
	require.Equal(t, 1, fake.SessionCalls)
	require.True(t, fake.Closed)
}

func TestEnsureAccount_NewUserAndGroup(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	accounts := newAccounts(fake, testAccountsConfig{})

	uid, session, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.NoError(t, err)
	require.NotZero(t, uid)
	require.NotEmpty(t, session)

	require.Equal(t, 1, fake.CreateGroupCalls)
	require.Equal(t, 1, fake.CreateExperimenterCalls)

	created, err := fake.FindExperimenter(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, created)
	require.False(t, created.Admin)
	require.True(t, created.Active)
	require.Equal(t, "a@example.org", created.Email)
	require.True(t, fake.Closed)
}

func TestEnsureAccount_ExistingGroupIsReused(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	fake.AddGroup(gateway.Group{Name: "oauth", Permissions: "rw----"})

	accounts := newAccounts(fake, testAccountsConfig{})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.NoError(t, err)
	require.Zero(t, fake.CreateGroupCalls)
	require.Equal(t, 1, fake.CreateExperimenterCalls)
}

func TestEnsureAccount_TimeTemplatedGroupName(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	accounts := newAccounts(fake, testAccountsConfig{groupName: "oauth-2006-01", groupNameTime: true})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.NoError(t, err)

	want := time.Now().Format("oauth-2006-01")
	g, err := fake.FindGroup(context.Background(), want)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestEnsureAccount_SessionParameters(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	fake.AddExperimenter(gateway.Experimenter{OmeName: "alice"})

	accounts := newAccounts(fake, testAccountsConfig{})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.NoError(t, err)
	require.Equal(t, gateway.Principal{Name: "alice", EventType: "User"}, fake.LastPrincipal)
	require.Equal(t, 15*time.Minute, fake.LastTimeout)
}

func TestEnsureAccount_ConnectFailure(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	fake.ConnectErr = errors.New("refused")

	accounts := newAccounts(fake, testAccountsConfig{})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.Error(t, err)
	require.ErrorIs(t, err, bridgeerrors.ErrAdminConnection)
	require.Zero(t, fake.SessionCalls)
}

func TestEnsureAccount_GatewayReleasedOnError(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	fake.AddExperimenter(gateway.Experimenter{OmeName: "alice"})
	fake.SessionErr = errors.New("session service down")

	accounts := newAccounts(fake, testAccountsConfig{})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.Error(t, err)
	require.ErrorIs(t, err, bridgeerrors.ErrSessionFailed)
	require.True(t, fake.Closed)
}

func TestEnsureAccount_LookupFailure(t *testing.T) {
	fake := gatewayfakes.NewFakeGateway()
	fake.FindErr = errors.New("query failed")

	accounts := newAccounts(fake, testAccountsConfig{})

	_, _, err := accounts.EnsureAccount(context.Background(), aliceProfile)
	require.Error(t, err)
	require.Zero(t, fake.CreateExperimenterCalls)
	require.True(t, fake.Closed)
}

func TestSessionForUser(t *testing.T) {
	t.Run("existing account", func(t *testing.T) {
		fake := gatewayfakes.NewFakeGateway()
		fake.AddExperimenter(gateway.Experimenter{OmeName: "root"})

		accounts := newAccounts(fake, testAccountsConfig{})

		session, err := accounts.SessionForUser(context.Background(), "root")
		require.NoError(t, err)
		require.NotEmpty(t, session)
		require.True(t, fake.Closed)
	})

	t.Run("unknown account", func(t *testing.T) {
		fake := gatewayfakes.NewFakeGateway()
		accounts := newAccounts(fake, testAccountsConfig{})

		_, err := accounts.SessionForUser(context.Background(), "ghost")
		require.ErrorIs(t, err, bridgeerrors.ErrAccountNotFound)
		require.Zero(t, fake.SessionCalls)
		require.True(t, fake.Closed)
	})
}
