// Package api is the typed request/response boundary to the Aegis
// backend. Every request carries the current bearer credential; when
// the credential cannot be refreshed the request is aborted and the
// session-expired error propagates so the caller can force a re-login.
// No failure is retried beyond that single token refresh.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/session"
)

// violationMarker is the substring the backend embeds in rejection
// bodies driven by domain policy, as opposed to authentication or
// authorization infrastructure failures.
const violationMarker = "VIOLAZIONE"

const defaultTimeout = 15 * time.Second

// Client is the HTTP client for the backend REST boundary.
type Client struct {
	baseURL string
	http    *http.Client
	auth    session.Authenticator
	logger  *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a backend client rooted at baseURL. The authenticator
// supplies and renews the bearer credential for every request.
func New(baseURL string, auth session.Authenticator, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		auth:    auth,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one authenticated request and decodes a 2xx JSON
// response into out when out is non-nil. Non-2xx responses are
// classified into the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	cred, _, err := c.auth.Refresh(ctx, session.RequestThreshold)
	if err != nil {
		// Never send the request unauthenticated.
		return fmt.Errorf("%w: %v", session.ErrSessionExpired, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Kind: KindFailure, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request transport failure", "method", method, "path", path, "error", err)
		return &Error{Kind: KindFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindFailure, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(method, path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	switch dst := out.(type) {
	case *[]byte:
		*dst = payload
		return nil
	default:
		if err := json.Unmarshal(payload, out); err != nil {
			return &Error{Kind: KindFailure, StatusCode: resp.StatusCode, Message: "decoding response: " + err.Error()}
		}
		return nil
	}
}

// classify maps a non-2xx response to the failure taxonomy. The
// business-rule marker takes precedence over the status code so a
// policy rejection delivered as 403 is still surfaced verbatim.
func (c *Client) classify(method, path string, status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	if strings.Contains(message, violationMarker) {
		return &Error{Kind: KindViolation, StatusCode: status, Message: message}
	}
	switch status {
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, StatusCode: status}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: status}
	default:
		c.logger.Error("unclassified backend failure",
			"method", method, "path", path, "status", status)
		return &Error{Kind: KindFailure, StatusCode: status, Message: message}
	}
}

// ListMissions fetches every mission visible to the caller.
func (c *Client) ListMissions(ctx context.Context) ([]intel.Mission, error) {
	var missions []intel.Mission
	if err := c.do(ctx, http.MethodGet, "/missions", nil, "", nil, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// GetMission fetches a single mission by id.
func (c *Client) GetMission(ctx context.Context, id string) (*intel.Mission, error) {
	var mission intel.Mission
	if err := c.do(ctx, http.MethodGet, "/missions/"+url.PathEscape(id), nil, "", nil, &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// CreateMission submits a new mission draft and returns the
// authoritative created record.
func (c *Client) CreateMission(ctx context.Context, draft intel.MissionDraft) (*intel.Mission, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, &Error{Kind: KindFailure, Message: err.Error()}
	}
	var mission intel.Mission
	if err := c.do(ctx, http.MethodPost, "/missions", nil, "application/json", bytes.NewReader(payload), &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// UploadAttachment posts a file against an existing mission.
func (c *Client) UploadAttachment(ctx context.Context, missionID, filename string, content io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Kind: KindFailure, Message: err.Error()}
	}
	if _, err := io.Copy(part, content); err != nil {
		return &Error{Kind: KindFailure, Message: err.Error()}
	}
	if err := writer.Close(); err != nil {
		return &Error{Kind: KindFailure, Message: err.Error()}
	}
	path := "/missions/" + url.PathEscape(missionID) + "/attachment"
	return c.do(ctx, http.MethodPost, path, nil, writer.FormDataContentType(), &buf, nil)
}

// DownloadAttachment fetches a mission's attachment as raw bytes.
func (c *Client) DownloadAttachment(ctx context.Context, missionID string) ([]byte, error) {
	var content []byte
	path := "/missions/" + url.PathEscape(missionID) + "/attachment"
	if err := c.do(ctx, http.MethodGet, path, nil, "", nil, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// AddNote appends a plain-text note and returns the whole updated
// mission; the backend owns ordering and authorship metadata.
func (c *Client) AddNote(ctx context.Context, missionID, text string) (*intel.Mission, error) {
	var mission intel.Mission
	path := "/missions/" + url.PathEscape(missionID) + "/notes"
	if err := c.do(ctx, http.MethodPost, path, nil, "text/plain", strings.NewReader(text), &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// UpdateStatus changes a mission's status and returns the updated
// record.
func (c *Client) UpdateStatus(ctx context.Context, missionID string, status intel.Status) (*intel.Mission, error) {
	var mission intel.Mission
	path := "/missions/" + url.PathEscape(missionID) + "/status"
	query := url.Values{"status": {string(status)}}
	if err := c.do(ctx, http.MethodPatch, path, query, "", nil, &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// AssignAgent grants an agent access to a mission and returns the
// updated record.
func (c *Client) AssignAgent(ctx context.Context, missionID, agentUsername string) (*intel.Mission, error) {
	var mission intel.Mission
	path := "/missions/" + url.PathEscape(missionID) + "/agents"
	query := url.Values{"agentId": {agentUsername}}
	if err := c.do(ctx, http.MethodPost, path, query, "", nil, &mission); err != nil {
		return nil, err
	}
	return &mission, nil
}

// Profile fetches the caller's own personnel record, including the
// authoritative clearance level.
func (c *Client) Profile(ctx context.Context) (*intel.Agent, error) {
	var agent intel.Agent
	if err := c.do(ctx, http.MethodGet, "/agents/me", nil, "", nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// SearchAgents queries the personnel registry for assignment
// suggestions.
func (c *Client) SearchAgents(ctx context.Context, query string) ([]intel.Agent, error) {
	var agents []intel.Agent
	q := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/agents/search", q, "", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// ListAgents fetches the full personnel registry. Privileged callers
// only; the backend enforces the tier.
func (c *Client) ListAgents(ctx context.Context) ([]intel.Agent, error) {
	var agents []intel.Agent
	if err := c.do(ctx, http.MethodGet, "/admin/agents", nil, "", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// SetAgentClearance changes an agent's clearance level.
func (c *Client) SetAgentClearance(ctx context.Context, username string, level int) error {
	path := "/admin/agents/" + url.PathEscape(username) + "/clearance"
	query := url.Values{"newLevel": {strconv.Itoa(level)}}
	return c.do(ctx, http.MethodPatch, path, query, "", nil, nil)
}

// FetchAudit retrieves the server-side audit history.
func (c *Client) FetchAudit(ctx context.Context) ([]intel.AuditEntry, error) {
	var entries []intel.AuditEntry
	if err := c.do(ctx, http.MethodGet, "/audit", nil, "", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
