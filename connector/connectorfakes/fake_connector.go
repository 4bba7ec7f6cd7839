package connectorfakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-oauth-bridge/connector"
)

var _ connector.Connector = (*FakeConnector)(nil)

// FakeConnector records handshake arguments for assertions
type FakeConnector struct {
	lock sync.Mutex

	Compatible bool
	ConnectErr error
	Upgrades   string

	CheckVersionCalls int
	ConnectionCalls   int
	LastUserAgent     string
	LastUsername      string
	LastPassword      string
	LastUserIP        string
	Connections       []*FakeConnection
}

func NewFakeConnector() *FakeConnector {
	return &FakeConnector{Compatible: true}
}

func (c *FakeConnector) CheckVersion(_ context.Context, userAgent string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.CheckVersionCalls++
	c.LastUserAgent = userAgent
	return c.Compatible
}

func (c *FakeConnector) CreateConnection(_ context.Context, userAgent, username, password, userIP string) (connector.Connection, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.ConnectionCalls++
	c.LastUserAgent = userAgent
	c.LastUsername = username
	c.LastPassword = password
	c.LastUserIP = userIP

	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	if username == "" || username != password {
		return nil, errors.New("invalid credential pair")
	}

	conn := &FakeConnection{Upgrades: c.Upgrades}
	c.Connections = append(c.Connections, conn)
	return conn, nil
}

var _ connector.Connection = (*FakeConnection)(nil)

type FakeConnection struct {
	Upgrades string
	Closed   bool
}

func (c *FakeConnection) UpgradesURL() string {
	return c.Upgrades
}

func (c *FakeConnection) Close() {
	c.Closed = true
}
