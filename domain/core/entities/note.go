package entities

import (
	"strings"
	"time"
)

// NoteID is the durable identifier the local store assigns to a note.
type NoteID int64

// Note is a captured passage. Everything except the mirror fields is fixed
// at creation; the mirror fields are written at most once, after a
// successful sync.
type Note struct {
	ID           NoteID
	Title        string
	TopicID      TopicID
	OriginalText string
	Keywords     string
	SourceURL    string
	CreatedAt    time.Time
	MirrorPageID string
	MirrorURL    string
}

// NewNote holds the fields supplied when a note is first persisted.
type NewNote struct {
	Title        string
	TopicID      TopicID
	OriginalText string
	Keywords     []string
	SourceURL    string
}

// NoteSummary is the list-view projection of a note joined with its topic.
type NoteSummary struct {
	ID        NoteID `json:"id"`
	Title     string `json:"title"`
	Topic     string `json:"topic"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
}

// NoteDetail is the full projection of a note joined with its topic.
// SummaryText always equals OriginalText; the column is kept for readers
// of the existing table layout.
type NoteDetail struct {
	ID           NoteID `json:"id"`
	Title        string `json:"title"`
	Topic        string `json:"topic"`
	Subject      string `json:"subject"`
	OriginalText string `json:"original_text"`
	SummaryText  string `json:"summary_text"`
	Keywords     string `json:"keywords"`
	SourceURL    string `json:"source_url"`
	CreatedAt    string `json:"created_at"`
	MirrorPageID string `json:"notion_page_id,omitempty"`
	MirrorURL    string `json:"notion_url,omitempty"`
}

// KeywordList splits the stored keyword string back into its parts.
func (d NoteDetail) KeywordList() []string {
	return SplitKeywords(d.Keywords)
}

// BodyLines returns the trimmed non-empty lines of the original text, or
// the whole text as a single line when there are none.
func (d NoteDetail) BodyLines() []string {
	var lines []string
	for _, line := range strings.Split(d.OriginalText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return []string{d.OriginalText}
	}
	return lines
}

// JoinKeywords renders keywords in their stored comma-joined form.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// SplitKeywords parses a comma-joined keyword string. Parts are trimmed but
// empty parts are kept so the caller decides how to treat them.
func SplitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Stats is an aggregate view over the local store.
type Stats struct {
	Topics         int            `json:"topics"`
	Notes          int            `json:"notes"`
	UniqueKeywords int            `json:"unique_keywords"`
	NotesBySubject []SubjectCount `json:"notes_by_subject"`
	MirroredNotes  int            `json:"mirrored_notes"`
}

// SubjectCount is the number of notes under one subject.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}
