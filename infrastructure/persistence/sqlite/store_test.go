package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "notes.db")
	s, err := Open(context.Background(), path, zap.NewNop(), WithClock(tickingClock()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Topics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("missing topic", func(t *testing.T) {
		_, err := s.FindTopicByName(ctx, "Nope")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("create then find", func(t *testing.T) {
		created, err := s.CreateTopic(ctx, "Water Conservation", "Environmental Science")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		found, err := s.FindTopicByName(ctx, "Water Conservation")
		require.NoError(t, err)
		assert.Equal(t, *created, *found)
	})

	t.Run("lookup is case sensitive", func(t *testing.T) {
		_, err := s.FindTopicByName(ctx, "water conservation")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("duplicate create returns existing row", func(t *testing.T) {
		first, err := s.FindTopicByName(ctx, "Water Conservation")
		require.NoError(t, err)

		again, err := s.CreateTopic(ctx, "Water Conservation", "Other Subject")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "Environmental Science", again.Subject)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		_, err := s.CreateTopic(ctx, "Algebra", "Mathematics")
		require.NoError(t, err)

		topics, err := s.ListTopics(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Algebra", "Water Conservation"}, entities.TopicNames(topics))
	})
}

func TestStore_Notes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	topic, err := s.CreateTopic(ctx, "Programming", "Computer Science")
	require.NoError(t, err)

	firstID, err := s.CreateNote(ctx, entities.NewNote{
		Title:        "Computer Science - Programming",
		TopicID:      topic.ID,
		OriginalText: "Closures capture variables.\nThey outlive the frame.",
		Keywords:     []string{"closures", "capture"},
		SourceURL:    "https://example.com/closures",
	})
	require.NoError(t, err)

	secondID, err := s.CreateNote(ctx, entities.NewNote{
		Title:        "Goroutines",
		TopicID:      topic.ID,
		OriginalText: "Goroutines are cheap.",
		Keywords:     []string{"goroutines"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	t.Run("get note", func(t *testing.T) {
		d, err := s.GetNote(ctx, firstID)
		require.NoError(t, err)

		assert.Equal(t, "Computer Science - Programming", d.Title)
		assert.Equal(t, "Programming", d.Topic)
		assert.Equal(t, "Computer Science", d.Subject)
		assert.Equal(t, d.OriginalText, d.SummaryText)
		assert.Equal(t, "closures, capture", d.Keywords)
		assert.Equal(t, "https://example.com/closures", d.SourceURL)
		assert.Equal(t, "2025-03-01 09:00:01.000000", d.CreatedAt)
		assert.Empty(t, d.MirrorPageID)
	})

	t.Run("unknown note", func(t *testing.T) {
		_, err := s.GetNote(ctx, 999)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("list newest first with paging", func(t *testing.T) {
		notes, err := s.ListNotes(ctx, 50, 0)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, secondID, notes[0].ID)
		assert.Equal(t, firstID, notes[1].ID)

		page, err := s.ListNotes(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, firstID, page[0].ID)
	})

	t.Run("negative paging", func(t *testing.T) {
		all, err := s.ListNotes(ctx, -1, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2, "negative limit means no limit")

		fromStart, err := s.ListNotes(ctx, 1, -5)
		require.NoError(t, err)
		require.Len(t, fromStart, 1)
		assert.Equal(t, secondID, fromStart[0].ID)
	})

	t.Run("mirror is set at most once", func(t *testing.T) {
		require.NoError(t, s.SetNoteMirror(ctx, firstID, "page-1", "https://notion.so/page-1"))
		require.NoError(t, s.SetNoteMirror(ctx, firstID, "page-2", "https://notion.so/page-2"))

		d, err := s.GetNote(ctx, firstID)
		require.NoError(t, err)
		assert.Equal(t, "page-1", d.MirrorPageID)
		assert.Equal(t, "https://notion.so/page-1", d.MirrorURL)
	})
}

func TestStore_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	water, err := s.CreateTopic(ctx, "Water Conservation", "Environmental Science")
	require.NoError(t, err)
	_, err = s.CreateTopic(ctx, "Algebra", "Mathematics")
	require.NoError(t, err)

	for _, kw := range [][]string{{"rain", "Runoff"}, {"runoff", "cisterns"}} {
		_, err := s.CreateNote(ctx, entities.NewNote{Title: "n", TopicID: water.ID, OriginalText: "x", Keywords: kw})
		require.NoError(t, err)
	}

	topics, notes, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, topics)
	assert.Equal(t, 2, notes)

	withCounts, err := s.TopicsWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, withCounts, 2)
	assert.Equal(t, "Algebra", withCounts[0].Name)
	assert.Equal(t, 0, withCounts[0].NoteCount)
	assert.Equal(t, 2, withCounts[1].NoteCount)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.UniqueKeywords)
	assert.Equal(t, []entities.SubjectCount{
		{Subject: "Environmental Science", Count: 2},
		{Subject: "Mathematics", Count: 0},
	}, st.NotesBySubject)
	assert.Equal(t, 0, st.MirroredNotes)

	assert.NoError(t, s.Ping(ctx))
}
