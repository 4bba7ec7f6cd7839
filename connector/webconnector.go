package connector

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/jrsteele09/go-oauth-bridge/internal/config"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/rs/zerolog/log"
)

// supportedServerVersion is the server major version this client speaks
const supportedServerVersion = "5"

var _ Connector = (*WebConnector)(nil)

// WebConnector logs into the image-data server over its JSON web API
type WebConnector struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebConnector(cfg config.GatewayConfig) *WebConnector {
	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Jar: jar, Timeout: 30 * time.Second}
	if !cfg.IsSecure() {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &WebConnector{baseURL: cfg.GetServerURL(), httpClient: httpClient}
}

// CheckVersion reports whether the server's major version is one this bridge
// can log into. Transport failures count as incompatible.
func (c *WebConnector) CheckVersion(ctx context.Context, userAgent string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("version check failed")
		return false
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return false
	}

	var version struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(rsp.Body).Decode(&version); err != nil {
		return false
	}
	major, _, _ := strings.Cut(version.Data, ".")
	return major == supportedServerVersion
}

// CreateConnection performs the login handshake. The bridge passes a session
// token for both username and password.
func (c *WebConnector) CreateConnection(ctx context.Context, userAgent, username, password, userIP string) (Connection, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"userIp":   userIP,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[WebConnector CreateConnection] encoding credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/connect", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "[WebConnector CreateConnection] building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConnectionFailed, "%v", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrConnectionFailed, "status %s", rsp.Status)
	}

	var connected struct {
		Data struct {
			UpgradesURL string `json:"upgradesUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rsp.Body).Decode(&connected); err != nil {
		return nil, errors.Wrapf(err, "[WebConnector CreateConnection] decoding response")
	}

	return &webConnection{connector: c, upgradesURL: connected.Data.UpgradesURL}, nil
}

type webConnection struct {
	connector   *WebConnector
	upgradesURL string
}

func (c *webConnection) UpgradesURL() string {
	return c.upgradesURL
}

// Close disconnects without destroying the underlying server session, which
// stays valid for the browser until its timeout.
func (c *webConnection) Close() {
	req, err := http.NewRequest(http.MethodPost, c.connector.baseURL+"/api/disconnect", nil)
	if err != nil {
		return
	}
	rsp, err := c.connector.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("disconnect failed")
		return
	}
	rsp.Body.Close()
}
