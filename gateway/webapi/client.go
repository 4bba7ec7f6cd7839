// Package webapi implements the gateway.Gateway interface over the
// image-data server's JSON web API.
package webapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/gateway"
	"github.com/jrsteele09/go-oauth-bridge/internal/config"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
)

var _ gateway.Gateway = (*Client)(nil)

type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	csrfToken  string
}

// New builds an unconnected administrative client. The session cookie and
// CSRF token are established by Connect.
func New(cfg config.GatewayConfig) *Client {
	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Jar: jar, Timeout: 30 * time.Second}
	if !cfg.IsSecure() {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		baseURL:    cfg.GetServerURL(),
		username:   cfg.GetAdminUsername(),
		password:   cfg.GetAdminPassword(),
		httpClient: httpClient,
	}
}

type experimenterJSON struct {
	ID        int64  `json:"id"`
	OmeName   string `json:"omeName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	Active    bool   `json:"active"`
}

type groupJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Permissions string `json:"permissions"`
}

// Connect obtains a CSRF token and logs in with the admin credentials
func (c *Client) Connect(ctx context.Context) error {
	var tokenRsp struct {
		Data string `json:"data"`
	}
	if err := c.get(ctx, "/api/token", nil, &tokenRsp); err != nil {
		return errors.Wrapf(err, "[webapi Connect] fetching csrf token")
	}
	c.csrfToken = tokenRsp.Data

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return errors.Wrapf(err, "[webapi Connect] building login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", c.csrfToken)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[webapi Connect] login request")
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("[webapi Connect] login returned %s", rsp.Status)
	}
	return nil
}

// Close logs the administrative session out. Failures are logged only; the
// server expires abandoned sessions on its own.
func (c *Client) Close() {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("X-CSRFToken", c.csrfToken)
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("webapi logout failed")
		return
	}
	rsp.Body.Close()
}

func (c *Client) FindExperimenter(ctx context.Context, omeName string) (*gateway.Experimenter, error) {
	var rsp struct {
		Data []experimenterJSON `json:"data"`
	}
	query := url.Values{"omeName": []string{omeName}}
	if err := c.get(ctx, "/api/m/experimenters", query, &rsp); err != nil {
		return nil, err
	}
	if len(rsp.Data) == 0 {
		return nil, nil
	}
	e := rsp.Data[0]
	return &gateway.Experimenter{
		ID:        e.ID,
		OmeName:   e.OmeName,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Admin:     e.Admin,
		Active:    e.Active,
	}, nil
}

func (c *Client) FindGroup(ctx context.Context, name string) (*gateway.Group, error) {
	var rsp struct {
		Data []groupJSON `json:"data"`
	}
	query := url.Values{"name": []string{name}}
	if err := c.get(ctx, "/api/m/experimentergroups", query, &rsp); err != nil {
		return nil, err
	}
	if len(rsp.Data) == 0 {
		return nil, nil
	}
	g := rsp.Data[0]
	return &gateway.Group{ID: g.ID, Name: g.Name, Permissions: g.Permissions}, nil
}

func (c *Client) CreateGroup(ctx context.Context, name, permissions string) (int64, error) {
	var rsp struct {
		Data groupJSON `json:"data"`
	}
	body := map[string]any{"name": name, "permissions": permissions}
	if err := c.post(ctx, "/api/m/experimentergroups", body, &rsp); err != nil {
		return 0, err
	}
	return rsp.Data.ID, nil
}

func (c *Client) CreateExperimenter(ctx context.Context, e gateway.Experimenter, defaultGroupID int64) (int64, error) {
	var rsp struct {
		Data experimenterJSON `json:"data"`
	}
	body := map[string]any{
		"omeName":        e.OmeName,
		"firstName":      e.FirstName,
		"lastName":       e.LastName,
		"email":          e.Email,
		"admin":          e.Admin,
		"active":         e.Active,
		"defaultGroupId": defaultGroupID,
		"otherGroupIds":  []int64{},
	}
	if err := c.post(ctx, "/api/m/experimenters", body, &rsp); err != nil {
		return 0, err
	}
	return rsp.Data.ID, nil
}

// CreateSessionWithTimeout mints a session for the principal. The timeout is
// the absolute session lifetime relative to creation, sent in milliseconds.
func (c *Client) CreateSessionWithTimeout(ctx context.Context, p gateway.Principal, timeout time.Duration) (string, error) {
	var rsp struct {
		Data struct {
			UUID string `json:"uuid"`
		} `json:"data"`
	}
	body := map[string]any{
		"principal": map[string]string{"name": p.Name, "eventType": p.EventType},
		"timeoutMs": timeout.Milliseconds(),
	}
	if err := c.post(ctx, "/api/sessions", body, &rsp); err != nil {
		return "", err
	}
	if rsp.Data.UUID == "" {
		return "", fmt.Errorf("[webapi CreateSessionWithTimeout] empty session uuid for %q", p.Name)
	}
	return rsp.Data.UUID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "[webapi get] building request for %s", path)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "[webapi post] encoding body for %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "[webapi post] building request for %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRFToken", c.csrfToken)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[webapi] %s %s", req.Method, req.URL.Path)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return fmt.Errorf("[webapi] %s %s returned %s", req.Method, req.URL.Path, rsp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(rsp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[webapi] decoding %s response", req.URL.Path)
	}
	return nil
}
