package gatewayfakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-bridge/gateway"
)

var _ gateway.Gateway = (*FakeGateway)(nil)

// FakeGateway is an in-memory Gateway for tests. Error fields inject
// failures; the call counters support asserting which operations ran.
type FakeGateway struct {
	lock          sync.RWMutex
	experimenters map[string]*gateway.Experimenter
	groups        map[string]*gateway.Group
	nextID        int64

	ConnectErr error
	FindErr    error
	CreateErr  error
	SessionErr error

	Connected bool
	Closed    bool

	FindExperimenterCalls   int
	CreateGroupCalls        int
	CreateExperimenterCalls int
	SessionCalls            int
	LastPrincipal           gateway.Principal
	LastTimeout             time.Duration
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		experimenters: make(map[string]*gateway.Experimenter),
		groups:        make(map[string]*gateway.Group),
	}
}

// AddExperimenter seeds an existing account and returns its ID
func (g *FakeGateway) AddExperimenter(e gateway.Experimenter) int64 {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.nextID++
	e.ID = g.nextID
	g.experimenters[e.OmeName] = &e
	return e.ID
}

// AddGroup seeds an existing group and returns its ID
func (g *FakeGateway) AddGroup(group gateway.Group) int64 {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.nextID++
	group.ID = g.nextID
	g.groups[group.Name] = &group
	return group.ID
}

func (g *FakeGateway) Connect(_ context.Context) error {
	if g.ConnectErr != nil {
		return g.ConnectErr
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Connected = true
	return nil
}

func (g *FakeGateway) Close() {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Connected = false
	g.Closed = true
}

func (g *FakeGateway) FindExperimenter(_ context.Context, omeName string) (*gateway.Experimenter, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.FindExperimenterCalls++
	if g.FindErr != nil {
		return nil, g.FindErr
	}
	e, ok := g.experimenters[omeName]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (g *FakeGateway) FindGroup(_ context.Context, name string) (*gateway.Group, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	if g.FindErr != nil {
		return nil, g.FindErr
	}
	group, ok := g.groups[name]
	if !ok {
		return nil, nil
	}
	copied := *group
	return &copied, nil
}

func (g *FakeGateway) CreateGroup(_ context.Context, name, permissions string) (int64, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.CreateGroupCalls++
	if g.CreateErr != nil {
		return 0, g.CreateErr
	}
	g.nextID++
	g.groups[name] = &gateway.Group{ID: g.nextID, Name: name, Permissions: permissions}
	return g.nextID, nil
}

func (g *FakeGateway) CreateExperimenter(_ context.Context, e gateway.Experimenter, defaultGroupID int64) (int64, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.CreateExperimenterCalls++
	if g.CreateErr != nil {
		return 0, g.CreateErr
	}
	g.nextID++
	e.ID = g.nextID
	g.experimenters[e.OmeName] = &e
	return g.nextID, nil
}

func (g *FakeGateway) CreateSessionWithTimeout(_ context.Context, p gateway.Principal, timeout time.Duration) (string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.SessionCalls++
	g.LastPrincipal = p
	g.LastTimeout = timeout
	if g.SessionErr != nil {
		return "", g.SessionErr
	}
	if _, ok := g.experimenters[p.Name]; !ok {
		return "", errAccountMissing(p.Name)
	}
	return uuid.New().String(), nil
}

type errAccountMissing string

func (e errAccountMissing) Error() string {
	return "no account named " + string(e)
}
