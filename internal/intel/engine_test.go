package intel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEngine(backend Backend) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(backend, WithLogger(logger))
}

func TestEngine_FetchByID(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)
	id := uuid.NewString()

	backend.On("GetMission", mock.Anything, id).
		Return(&Mission{ID: id, Status: StatusActive}, nil)

	mission, err := engine.FetchByID(context.Background(), " "+id+" ")
	require.NoError(t, err)
	assert.Equal(t, id, mission.ID)
	backend.AssertExpectations(t)
}

func TestEngine_FetchByID_EmptyID(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	_, err := engine.FetchByID(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMissionID)
	backend.AssertNotCalled(t, "GetMission", mock.Anything, mock.Anything)
}

func TestEngine_CreateWithAttachment_FullSuccess(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)
	id := uuid.NewString()

	created := &Mission{ID: id, GeographicZone: "Berlin", ClearanceLevel: 2, Status: StatusDraft}
	withFile := &Mission{ID: id, GeographicZone: "Berlin", ClearanceLevel: 2, Status: StatusDraft, AttachmentFilename: "dossier.pdf"}

	backend.On("CreateMission", mock.Anything, MissionDraft{
		Description:    "recon op",
		GeographicZone: "Berlin",
		ClearanceLevel: 2,
	}).Return(created, nil)
	backend.On("UploadAttachment", mock.Anything, id, "dossier.pdf", mock.Anything).Return(nil)
	backend.On("GetMission", mock.Anything, id).Return(withFile, nil)

	result, err := engine.CreateWithAttachment(context.Background(),
		MissionDraft{Description: "recon op", GeographicZone: "Berlin", ClearanceLevel: 2},
		&Attachment{Filename: "dossier.pdf", Content: strings.NewReader("%PDF")})

	require.NoError(t, err)
	require.NoError(t, result.AttachmentErr)
	assert.Equal(t, "dossier.pdf", result.Mission.AttachmentFilename)
	assert.Equal(t, StatusDraft, result.Mission.Status)
	backend.AssertExpectations(t)
}

func TestEngine_CreateWithAttachment_ClampsClearanceAndSanitizes(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("CreateMission", mock.Anything, MissionDraft{
		Description:    "scriptrecon",
		GeographicZone: "Berlin",
		ClearanceLevel: 3,
	}).Return(&Mission{ID: "m-1"}, nil)

	_, err := engine.CreateWithAttachment(context.Background(), MissionDraft{
		Description:    "<script>recon",
		GeographicZone: "Ber<lin>",
		ClearanceLevel: 7,
	}, nil)

	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestEngine_CreateWithAttachment_PartialSuccessKept(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)
	id := uuid.NewString()
	uploadErr := errors.New("upload refused")

	backend.On("CreateMission", mock.Anything, mock.Anything).Return(&Mission{ID: id}, nil)
	backend.On("UploadAttachment", mock.Anything, id, "x.pdf", mock.Anything).Return(uploadErr)

	result, err := engine.CreateWithAttachment(context.Background(),
		MissionDraft{Description: "op"},
		&Attachment{Filename: "x.pdf", Content: strings.NewReader("x")})

	// The mission exists without its attachment; not rolled back.
	require.NoError(t, err)
	assert.Equal(t, id, result.Mission.ID)
	assert.ErrorIs(t, result.AttachmentErr, uploadErr)
	backend.AssertNotCalled(t, "GetMission", mock.Anything, mock.Anything)
}

func TestEngine_AppendNote(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("AddNote", mock.Anything, "m-1", "no tags here").
		Return(&Mission{ID: "m-1", Notes: []Note{{ID: "n-1", Content: "no tags here"}}}, nil)

	mission, err := engine.AppendNote(context.Background(), "m-1", "no <b>tags</b> here")
	require.NoError(t, err)
	require.Len(t, mission.Notes, 1)
	backend.AssertExpectations(t)
}

func TestEngine_AppendNote_RejectsEmptyLocally(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	for _, text := range []string{"", "   ", "\n\t", "<>"} {
		_, err := engine.AppendNote(context.Background(), "m-1", text)
		assert.ErrorIs(t, err, ErrEmptyNote, "input %q", text)
	}
	backend.AssertNotCalled(t, "AddNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_AppendNote_AppendOnly(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	first := Note{ID: "n-1", AuthorCodeName: "RAVEN", Timestamp: time.Unix(100, 0), Content: "first"}
	backend.On("AddNote", mock.Anything, "m-1", "second").
		Return(&Mission{ID: "m-1", Notes: []Note{first, {ID: "n-2", Content: "second"}}}, nil)

	mission, err := engine.AppendNote(context.Background(), "m-1", "second")
	require.NoError(t, err)

	// A later append leaves every prior note untouched.
	require.Len(t, mission.Notes, 2)
	assert.Equal(t, first, mission.Notes[0])
}

func TestEngine_UpdateStatus(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("UpdateStatus", mock.Anything, "m-1", StatusAborted).
		Return(&Mission{ID: "m-1", Status: StatusAborted}, nil)

	mission, err := engine.UpdateStatus(context.Background(), "m-1", StatusAborted)
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, mission.Status)
}

func TestEngine_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	_, err := engine.UpdateStatus(context.Background(), "m-1", Status("PAUSED"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	backend.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_WriteThenReadConsistency(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("UpdateStatus", mock.Anything, "m-1", StatusCompleted).
		Return(&Mission{ID: "m-1", Status: StatusCompleted}, nil)
	backend.On("GetMission", mock.Anything, "m-1").
		Return(&Mission{ID: "m-1", Status: StatusCompleted}, nil)

	updated, err := engine.UpdateStatus(context.Background(), "m-1", StatusCompleted)
	require.NoError(t, err)

	fetched, err := engine.FetchByID(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, updated.Status, fetched.Status)
}

func TestEngine_AssignAgent_RequiresUsername(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	_, err := engine.AssignAgent(context.Background(), "m-1", "  ")
	assert.ErrorIs(t, err, ErrEmptyAgent)
	backend.AssertNotCalled(t, "AssignAgent", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_SearchSuggestions_ShortFragmentShortCircuits(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	for _, q := range []string{"", "a", " a ", "<a>"} {
		agents, err := engine.SearchSuggestions(context.Background(), q)
		require.NoError(t, err, "input %q", q)
		assert.Empty(t, agents, "input %q", q)
	}
	backend.AssertNotCalled(t, "SearchAgents", mock.Anything, mock.Anything)
}

func TestEngine_SearchSuggestions_SanitizesQuery(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("SearchAgents", mock.Anything, "gho").
		Return([]Agent{{Username: "ghost"}}, nil)

	agents, err := engine.SearchSuggestions(context.Background(), "<gho>")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "ghost", agents[0].Username)
}

func TestEngine_ChangeAgentClearance_Clamps(t *testing.T) {
	backend := &mockBackend{}
	engine := newTestEngine(backend)

	backend.On("SetAgentClearance", mock.Anything, "raven", 3).Return(nil)

	level, err := engine.ChangeAgentClearance(context.Background(), "raven", 9)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
	backend.AssertExpectations(t)
}
