package intel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Local validation failures, rejected before any network call.
var (
	ErrEmptyMissionID = errors.New("mission id must not be empty")
	ErrEmptyNote      = errors.New("note text must not be empty")
	ErrEmptyAgent     = errors.New("agent username must not be empty")
	ErrInvalidStatus  = errors.New("unknown mission status")
)

// Backend is the data-access boundary the engine drives. The api
// package provides the production implementation.
type Backend interface {
	ListMissions(ctx context.Context) ([]Mission, error)
	GetMission(ctx context.Context, id string) (*Mission, error)
	CreateMission(ctx context.Context, draft MissionDraft) (*Mission, error)
	UploadAttachment(ctx context.Context, missionID, filename string, content io.Reader) error
	DownloadAttachment(ctx context.Context, missionID string) ([]byte, error)
	AddNote(ctx context.Context, missionID, text string) (*Mission, error)
	UpdateStatus(ctx context.Context, missionID string, status Status) (*Mission, error)
	AssignAgent(ctx context.Context, missionID, agentUsername string) (*Mission, error)
	Profile(ctx context.Context) (*Agent, error)
	SearchAgents(ctx context.Context, query string) ([]Agent, error)
	ListAgents(ctx context.Context) ([]Agent, error)
	SetAgentClearance(ctx context.Context, username string, level int) error
	FetchAudit(ctx context.Context) ([]AuditEntry, error)
}

// Engine owns the mission workflow rules: local validation and
// sanitization before a request goes out, phase ordering inside one
// mutation, and the invariant that local mission state is always
// replaced wholesale from the authoritative response.
type Engine struct {
	backend Backend
	logger  *slog.Logger
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a workflow engine over the given backend.
func NewEngine(backend Backend, opts ...EngineOption) *Engine {
	e := &Engine{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FetchByID retrieves a single mission. The returned record replaces
// any locally held detail view wholesale.
func (e *Engine) FetchByID(ctx context.Context, id string) (*Mission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyMissionID
	}
	e.logger.Debug("fetching mission", "id", id)
	return e.backend.GetMission(ctx, id)
}

// Attachment is a file to upload against a newly created mission.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// CreateResult is the outcome of the two-phase create operation.
// AttachmentErr is set when the base record was created but the upload
// phase failed: the mission exists without its attachment and the
// partial success is kept, not rolled back.
type CreateResult struct {
	Mission       *Mission
	AttachmentErr error
}

// CreateWithAttachment creates a mission and, if a file is present,
// uploads it against the returned id. Draft text fields are sanitized
// and the clearance level is clamped to the valid range before
// submission. Phases run strictly in sequence.
func (e *Engine) CreateWithAttachment(ctx context.Context, draft MissionDraft, attachment *Attachment) (CreateResult, error) {
	draft.Description = Sanitize(draft.Description)
	draft.GeographicZone = Sanitize(draft.GeographicZone)
	draft.ClearanceLevel = ClampClearance(draft.ClearanceLevel)

	created, err := e.backend.CreateMission(ctx, draft)
	if err != nil {
		return CreateResult{}, err
	}
	e.logger.Info("mission created", "id", created.ID, "zone", created.GeographicZone)

	if attachment == nil {
		return CreateResult{Mission: created}, nil
	}

	if err := e.backend.UploadAttachment(ctx, created.ID, attachment.Filename, attachment.Content); err != nil {
		e.logger.Warn("attachment upload failed, mission kept without attachment",
			"id", created.ID, "filename", attachment.Filename, "error", err)
		return CreateResult{Mission: created, AttachmentErr: err}, nil
	}

	// Re-fetch so the detail view reflects the attachment the server
	// actually recorded.
	updated, err := e.backend.GetMission(ctx, created.ID)
	if err != nil {
		e.logger.Warn("post-upload refresh failed", "id", created.ID, "error", err)
		return CreateResult{Mission: created}, nil
	}
	return CreateResult{Mission: updated}, nil
}

// AppendNote appends text to a mission's note ledger. Empty or
// whitespace-only text is rejected locally; the submitted text is
// sanitized. The whole returned mission replaces local state since the
// backend owns note ordering and authorship.
func (e *Engine) AppendNote(ctx context.Context, missionID, text string) (*Mission, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return nil, ErrEmptyMissionID
	}
	text = Sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyNote
	}
	e.logger.Debug("appending note", "mission", missionID)
	return e.backend.AddNote(ctx, missionID, text)
}

// UpdateStatus moves a mission to the given status. Any transition is
// permitted for an authorized role; ordering policy is the backend's.
func (e *Engine) UpdateStatus(ctx context.Context, missionID string, status Status) (*Mission, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return nil, ErrEmptyMissionID
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	e.logger.Info("updating mission status", "mission", missionID, "status", status)
	return e.backend.UpdateStatus(ctx, missionID, status)
}

// AssignAgent grants an agent access to a mission. Business-rule
// rejections come back as the api violation kind so the caller can
// frame them as an authorization boundary instead of a generic
// failure.
func (e *Engine) AssignAgent(ctx context.Context, missionID, agentUsername string) (*Mission, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return nil, ErrEmptyMissionID
	}
	agentUsername = strings.TrimSpace(agentUsername)
	if agentUsername == "" {
		return nil, ErrEmptyAgent
	}
	e.logger.Info("assigning agent", "mission", missionID, "agent", agentUsername)
	return e.backend.AssignAgent(ctx, missionID, agentUsername)
}

// SearchSuggestions returns advisory assignment suggestions. Fragments
// shorter than two characters short-circuit to an empty set without a
// network call to bound request volume. Suggestions never gate the
// assignment itself.
func (e *Engine) SearchSuggestions(ctx context.Context, fragment string) ([]Agent, error) {
	fragment = Sanitize(strings.TrimSpace(fragment))
	if len(fragment) < 2 {
		return nil, nil
	}
	return e.backend.SearchAgents(ctx, fragment)
}

// DownloadAttachment fetches the binary attachment of a mission.
func (e *Engine) DownloadAttachment(ctx context.Context, missionID string) ([]byte, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return nil, ErrEmptyMissionID
	}
	return e.backend.DownloadAttachment(ctx, missionID)
}

// ChangeAgentClearance sets an agent's clearance level, clamped to the
// valid range. Returns the level actually submitted.
func (e *Engine) ChangeAgentClearance(ctx context.Context, username string, level int) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, ErrEmptyAgent
	}
	level = ClampClearance(level)
	e.logger.Info("changing agent clearance", "agent", username, "level", level)
	if err := e.backend.SetAgentClearance(ctx, username, level); err != nil {
		return 0, err
	}
	return level, nil
}

// FetchProfile retrieves the caller's own record, used once per
// session to confirm the claimed clearance.
func (e *Engine) FetchProfile(ctx context.Context) (*Agent, error) {
	return e.backend.Profile(ctx)
}
