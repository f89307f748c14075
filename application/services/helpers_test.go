package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/notion"
	"studycapture/infrastructure/notion/notiontest"
	"studycapture/infrastructure/persistence/sqlite"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingMetrics counts pipeline events.
type recordingMetrics struct {
	mu             sync.Mutex
	paths          []entities.ClassificationPath
	topicsCreated  int
	notesCaptured  int
	mirrorOutcomes []string
}

func (m *recordingMetrics) ClassificationCompleted(p entities.ClassificationPath) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, p)
}

func (m *recordingMetrics) TopicCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicsCreated++
}

func (m *recordingMetrics) NoteCaptured() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notesCaptured++
}

func (m *recordingMetrics) MirrorOutcome(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirrorOutcomes = append(m.mirrorOutcomes, status)
}

// MockStore is a testify mock of ports.Store for failure paths.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListTopics(ctx context.Context) ([]entities.Topic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Topic), args.Error(1)
}

func (m *MockStore) FindTopicByName(ctx context.Context, name string) (*entities.Topic, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Topic), args.Error(1)
}

func (m *MockStore) CreateTopic(ctx context.Context, name, subject string) (*entities.Topic, error) {
	args := m.Called(ctx, name, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Topic), args.Error(1)
}

func (m *MockStore) CreateNote(ctx context.Context, n entities.NewNote) (entities.NoteID, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(entities.NoteID), args.Error(1)
}

func (m *MockStore) GetNote(ctx context.Context, id entities.NoteID) (*entities.NoteDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.NoteDetail), args.Error(1)
}

func (m *MockStore) ListNotes(ctx context.Context, limit, offset int) ([]entities.NoteSummary, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.NoteSummary), args.Error(1)
}

func (m *MockStore) SetNoteMirror(ctx context.Context, id entities.NoteID, pageID, url string) error {
	return m.Called(ctx, id, pageID, url).Error(0)
}

func (m *MockStore) Counts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockStore) Stats(ctx context.Context) (*entities.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Stats), args.Error(1)
}

func (m *MockStore) TopicsWithCounts(ctx context.Context) ([]entities.TopicWithCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TopicWithCount), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ ports.Store = (*MockStore)(nil)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "notes.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newNotionClient(srv *notiontest.Server) *notion.Client {
	return notion.NewClient(config.Notion{
		APIKey:     notiontest.Token,
		DatabaseID: notiontest.RootID,
		BaseURL:    srv.URL,
		Version:    notiontest.Version,
		Timeout:    5 * time.Second,
	}, nil, zap.NewNop())
}

func modelReply(subject, topic string, createNew bool, keywords string) string {
	return fmt.Sprintf(`{"subject": %q, "topic": %q, "create_new": %t, "keywords": %q}`,
		subject, topic, createNew, keywords)
}
