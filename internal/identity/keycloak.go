// Package identity implements the session.Authenticator boundary
// against a Keycloak realm using the direct-access grant, the
// login-required flow available to a terminal client. Token contents
// are treated as opaque beyond claim decoding; validation is the
// provider's and backend's concern.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aegis-intel/aegis-console/internal/session"
)

const requestTimeout = 10 * time.Second

// Keycloak is a direct-grant authenticator for one realm.
type Keycloak struct {
	baseURL  string
	realm    string
	clientID string
	username string
	password string

	http   *http.Client
	logger *slog.Logger
	now    func() time.Time

	mu           sync.Mutex
	current      session.Credential
	refreshToken string
}

// Option is a functional option for configuring the authenticator.
type Option func(*Keycloak)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(k *Keycloak) {
		k.http = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Keycloak) {
		k.logger = logger
	}
}

// New creates an authenticator for the given realm and client.
func New(baseURL, realm, clientID, username, password string, opts ...Option) *Keycloak {
	k := &Keycloak{
		baseURL:  strings.TrimRight(baseURL, "/"),
		realm:    realm,
		clientID: clientID,
		username: username,
		password: password,
		http:     &http.Client{Timeout: requestTimeout},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login performs the password grant and stores the issued credential.
func (k *Keycloak) Login(ctx context.Context) (session.Credential, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {k.clientID},
		"username":   {k.username},
		"password":   {k.password},
	}
	cred, err := k.requestToken(ctx, form)
	if err != nil {
		return session.Credential{}, fmt.Errorf("login: %w", err)
	}
	k.logger.Info("authenticated with identity provider", "realm", k.realm)
	return cred, nil
}

// Refresh renews the credential when it expires within minValidity.
// It reports whether renewal occurred. A renewal failure means the
// underlying provider session is no longer renewable; the caller must
// treat that as terminal.
func (k *Keycloak) Refresh(ctx context.Context, minValidity time.Duration) (session.Credential, bool, error) {
	k.mu.Lock()
	current := k.current
	refresh := k.refreshToken
	k.mu.Unlock()

	if refresh == "" {
		return session.Credential{}, false, errors.New("refresh: no active provider session")
	}
	if current.ExpiresAt.Sub(k.now()) > minValidity {
		return current, false, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {k.clientID},
		"refresh_token": {refresh},
	}
	cred, err := k.requestToken(ctx, form)
	if err != nil {
		return session.Credential{}, false, fmt.Errorf("refresh: %w", err)
	}
	return cred, true, nil
}

// Logout invalidates the provider session and drops the stored
// credential.
func (k *Keycloak) Logout(ctx context.Context) error {
	k.mu.Lock()
	refresh := k.refreshToken
	k.current = session.Credential{}
	k.refreshToken = ""
	k.mu.Unlock()

	if refresh == "" {
		return nil
	}

	form := url.Values{
		"client_id":     {k.clientID},
		"refresh_token": {refresh},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.endpoint("logout"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	k.logger.Info("provider session closed")
	return nil
}

func (k *Keycloak) requestToken(ctx context.Context, form url.Values) (session.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		k.endpoint("token"), strings.NewReader(form.Encode()))
	if err != nil {
		return session.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.http.Do(req)
	if err != nil {
		return session.Credential{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Credential{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return session.Credential{}, fmt.Errorf("identity provider status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return session.Credential{}, fmt.Errorf("decoding token response: %w", err)
	}

	cred := session.Credential{
		AccessToken: tok.AccessToken,
		ExpiresAt:   k.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}

	k.mu.Lock()
	k.current = cred
	k.refreshToken = tok.RefreshToken
	k.mu.Unlock()
	return cred, nil
}

func (k *Keycloak) endpoint(name string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s", k.baseURL, url.PathEscape(k.realm), name)
}
