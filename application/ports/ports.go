package ports

import (
	"context"
	"errors"
	"strings"

	"studycapture/domain/core/entities"
)

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// TopicRepository persists the topic taxonomy.
// This is a port in hexagonal architecture; the sqlite package implements it.
type TopicRepository interface {
	// ListTopics returns every topic ordered by name.
	ListTopics(ctx context.Context) ([]entities.Topic, error)

	// FindTopicByName returns ErrNotFound when no topic has exactly this name.
	FindTopicByName(ctx context.Context, name string) (*entities.Topic, error)

	// CreateTopic inserts a topic. If another writer inserted the same name
	// first, the existing row is returned instead.
	CreateTopic(ctx context.Context, name, subject string) (*entities.Topic, error)
}

// NoteRepository persists captured notes.
type NoteRepository interface {
	CreateNote(ctx context.Context, note entities.NewNote) (entities.NoteID, error)

	// GetNote returns ErrNotFound for an unknown id.
	GetNote(ctx context.Context, id entities.NoteID) (*entities.NoteDetail, error)

	// ListNotes returns notes newest first. A negative limit returns all
	// notes; a negative offset is treated as zero.
	ListNotes(ctx context.Context, limit, offset int) ([]entities.NoteSummary, error)

	// SetNoteMirror records the external page for a note. It is a no-op if
	// the note already has one.
	SetNoteMirror(ctx context.Context, id entities.NoteID, pageID, url string) error
}

// StatsReader exposes aggregate views over the store.
type StatsReader interface {
	Counts(ctx context.Context) (topics, notes int, err error)
	Stats(ctx context.Context) (*entities.Stats, error)
	TopicsWithCounts(ctx context.Context) ([]entities.TopicWithCount, error)
	Ping(ctx context.Context) error
}

// Store is everything the local database provides.
type Store interface {
	TopicRepository
	NoteRepository
	StatsReader
}

// CompletionRequest is one system+user exchange with a generative model.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// PageRef identifies a page in the external document service. Title is the
// page title flattened to plain text; ParentID is empty when the service
// did not report a page or database parent.
type PageRef struct {
	ID       string
	URL      string
	Title    string
	ParentID string
}

// SamePageID compares two page ids, ignoring dashes and case. The page
// service accepts ids in either dashed or compact form.
func SamePageID(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "-", ""))
	}
	return a != "" && norm(a) == norm(b)
}

// LeafPage is the content of a note page.
type LeafPage struct {
	Title     string
	Lines     []string
	SourceURL string
	Keywords  []string
}

// PageService is the subset of the external document API used for mirroring.
type PageService interface {
	SearchPages(ctx context.Context, title string) ([]PageRef, error)
	CreatePage(ctx context.Context, parentID, title string) (*PageRef, error)
	CreateLeafPage(ctx context.Context, parentID string, leaf LeafPage) (*PageRef, error)
}

// Metrics receives pipeline events.
type Metrics interface {
	ClassificationCompleted(path entities.ClassificationPath)
	TopicCreated()
	NoteCaptured()
	MirrorOutcome(status string)
}

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) ClassificationCompleted(entities.ClassificationPath) {}
func (NopMetrics) TopicCreated()                                      {}
func (NopMetrics) NoteCaptured()                                      {}
func (NopMetrics) MirrorOutcome(string)                               {}
