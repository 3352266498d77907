package intel

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// mockBackend is a testify mock of the Backend boundary.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListMissions(ctx context.Context) ([]Mission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Mission), args.Error(1)
}

func (m *mockBackend) GetMission(ctx context.Context, id string) (*Mission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mission), args.Error(1)
}

func (m *mockBackend) CreateMission(ctx context.Context, draft MissionDraft) (*Mission, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mission), args.Error(1)
}

func (m *mockBackend) UploadAttachment(ctx context.Context, missionID, filename string, content io.Reader) error {
	args := m.Called(ctx, missionID, filename, content)
	return args.Error(0)
}

func (m *mockBackend) DownloadAttachment(ctx context.Context, missionID string) ([]byte, error) {
	args := m.Called(ctx, missionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBackend) AddNote(ctx context.Context, missionID, text string) (*Mission, error) {
	args := m.Called(ctx, missionID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mission), args.Error(1)
}

func (m *mockBackend) UpdateStatus(ctx context.Context, missionID string, status Status) (*Mission, error) {
	args := m.Called(ctx, missionID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mission), args.Error(1)
}

func (m *mockBackend) AssignAgent(ctx context.Context, missionID, agentUsername string) (*Mission, error) {
	args := m.Called(ctx, missionID, agentUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Mission), args.Error(1)
}

func (m *mockBackend) Profile(ctx context.Context) (*Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Agent), args.Error(1)
}

func (m *mockBackend) SearchAgents(ctx context.Context, query string) ([]Agent, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Agent), args.Error(1)
}

func (m *mockBackend) ListAgents(ctx context.Context) ([]Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Agent), args.Error(1)
}

func (m *mockBackend) SetAgentClearance(ctx context.Context, username string, level int) error {
	args := m.Called(ctx, username, level)
	return args.Error(0)
}

func (m *mockBackend) FetchAudit(ctx context.Context) ([]AuditEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]AuditEntry), args.Error(1)
}
