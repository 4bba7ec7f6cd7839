package provider_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth-bridge/internal/errors"
	"github.com/jrsteele09/go-oauth-bridge/provider"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// testOAuthConfig implements config.OAuthConfig for tests
type testOAuthConfig struct {
	clientID    string
	authURL     string
	tokenURL    string
	userinfoURL string
	issuer      string
}

func (c testOAuthConfig) GetClientID() string         { return c.clientID }
func (c testOAuthConfig) GetClientSecret() string     { return "test-secret" }
func (c testOAuthConfig) GetClientName() string       { return "Test Provider" }
func (c testOAuthConfig) GetScopes() []string         { return []string{"openid"} }
func (c testOAuthConfig) GetIssuer() string           { return c.issuer }
func (c testOAuthConfig) GetAuthorizationURL() string { return c.authURL }
func (c testOAuthConfig) GetTokenURL() string         { return c.tokenURL }
func (c testOAuthConfig) GetUserinfoURL() string      { return c.userinfoURL }
func (c testOAuthConfig) GetRedirectURL() string      { return "http://localhost/callback" }

func newTestProvider(t *testing.T, userinfoStatus int) (*httptest.Server, testOAuthConfig) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userinfoStatus)
		w.Write([]byte(`{"login":"alice","mail":"a@example.org","uid":1001,"verified":true,"groups":["x","y"]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, testOAuthConfig{
		clientID:    "test-client",
		authURL:     srv.URL + "/authorize",
		tokenURL:    srv.URL + "/token",
		userinfoURL: srv.URL + "/userinfo",
	}
}

func TestAuthCodeURL(t *testing.T) {
	_, cfg := newTestProvider(t, http.StatusOK)

	client, err := provider.New(context.Background(), cfg)
	require.NoError(t, err)

	url := client.AuthCodeURL("random-state")
	require.Contains(t, url, cfg.authURL)
	require.Contains(t, url, "state=random-state")
	require.Contains(t, url, "client_id=test-client")
	require.Contains(t, url, "scope=openid")
}

func TestIssuerDiscovery(t *testing.T) {
	var issuer string
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"issuer":%q,"authorization_endpoint":%q,"token_endpoint":%q,"jwks_uri":%q}`,
			issuer, issuer+"/authorize", issuer+"/token", issuer+"/keys")
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	issuer = srv.URL

	client, err := provider.New(context.Background(), testOAuthConfig{
		clientID: "test-client",
		issuer:   issuer,
	})
	require.NoError(t, err)

	// the discovered endpoints drive the flow, no explicit URLs configured
	url := client.AuthCodeURL("random-state")
	require.Contains(t, url, issuer+"/authorize")
	require.Contains(t, url, "state=random-state")

	token, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "provider-token", token.AccessToken)
}

func TestIssuerDiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such realm", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := provider.New(context.Background(), testOAuthConfig{
		clientID: "test-client",
		issuer:   srv.URL,
	})
	require.Error(t, err)
}

func TestExchangeAndUserinfo(t *testing.T) {
	_, cfg := newTestProvider(t, http.StatusOK)

	client, err := provider.New(context.Background(), cfg)
	require.NoError(t, err)

	token, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "provider-token", token.AccessToken)

	fields, err := client.Userinfo(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "alice", fields["login"])
	require.Equal(t, "a@example.org", fields["mail"])
	require.Equal(t, "1001", fields["uid"])
	require.Equal(t, "true", fields["verified"])
	// nested values are not usable as template fields
	require.NotContains(t, fields, "groups")
}

func TestExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := provider.New(context.Background(), testOAuthConfig{
		clientID: "test-client",
		authURL:  srv.URL + "/authorize",
		tokenURL: srv.URL + "/token",
	})
	require.NoError(t, err)

	_, err = client.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrTokenExchange)
}

func TestUserinfoFailure(t *testing.T) {
	_, cfg := newTestProvider(t, http.StatusInternalServerError)

	client, err := provider.New(context.Background(), cfg)
	require.NoError(t, err)

	token, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)

	_, err = client.Userinfo(context.Background(), token)
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrUserinfoFailed)
}

func TestUserinfoIDTokenFallback(t *testing.T) {
	_, cfg := newTestProvider(t, http.StatusOK)
	cfg.userinfoURL = "" // force the id_token claims path

	client, err := provider.New(context.Background(), cfg)
	require.NoError(t, err)

	rawIDToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "alice",
		"email": "a@example.org",
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	token := (&oauth2.Token{AccessToken: "provider-token"}).
		WithExtra(map[string]any{"id_token": rawIDToken})

	fields, err := client.Userinfo(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "alice", fields["sub"])
	require.Equal(t, "a@example.org", fields["email"])
}

func TestUserinfoNoIdentitySource(t *testing.T) {
	_, cfg := newTestProvider(t, http.StatusOK)
	cfg.userinfoURL = ""

	client, err := provider.New(context.Background(), cfg)
	require.NoError(t, err)

	_, err = client.Userinfo(context.Background(), &oauth2.Token{AccessToken: "provider-token"})
	require.ErrorIs(t, err, errors.ErrNoIdentitySource)
}
