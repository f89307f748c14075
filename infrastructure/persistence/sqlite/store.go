// Package sqlite implements the local note store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// TimeLayout is the text form of created_at. It sorts lexically in time
// order and matches SQLite's own datetime() output up to the fraction.
const TimeLayout = "2006-01-02 15:04:05.000000"

var openDB = sql.Open

// Store is a ports.Store backed by SQLite. Each method commits on its own;
// there is no transaction spanning calls.
type Store struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, logger *zap.Logger, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// A single connection serializes writers and keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:     db,
		path:   path,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS topics (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS summaries (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			title          TEXT    NOT NULL,
			topic_id       INTEGER NOT NULL,
			original_text  TEXT    NOT NULL,
			summary_text   TEXT    NOT NULL,
			keywords       TEXT    NOT NULL DEFAULT '',
			source_url     TEXT    NOT NULL DEFAULT '',
			created_at     TEXT    NOT NULL,
			notion_page_id TEXT,
			notion_url     TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_topic ON summaries(topic_id);
		CREATE INDEX IF NOT EXISTS idx_summaries_created ON summaries(created_at DESC, id DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// ─── Topics ──────────────────────────────────────────────────────────────────

func (s *Store) ListTopics(ctx context.Context) ([]entities.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, subject FROM topics ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	topics := []entities.Topic{}
	for rows.Next() {
		var t entities.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *Store) FindTopicByName(ctx context.Context, name string) (*entities.Topic, error) {
	var t entities.Topic
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject FROM topics WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name, &t.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find topic %q: %w", name, err)
	}
	return &t, nil
}

// CreateTopic inserts a topic. A concurrent insert of the same name is
// absorbed by returning the row that won.
func (s *Store) CreateTopic(ctx context.Context, name, subject string) (*entities.Topic, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (name, subject) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, subject,
	)
	if err != nil {
		return nil, fmt.Errorf("insert topic %q: %w", name, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("topic already existed on insert", zap.String("topic", name))
		return s.FindTopicByName(ctx, name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("topic id: %w", err)
	}
	return &entities.Topic{ID: entities.TopicID(id), Name: name, Subject: subject}, nil
}

// ─── Notes ───────────────────────────────────────────────────────────────────

func (s *Store) CreateNote(ctx context.Context, n entities.NewNote) (entities.NoteID, error) {
	createdAt := s.now().UTC().Format(TimeLayout)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (title, topic_id, original_text, summary_text, keywords, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.TopicID, n.OriginalText, n.OriginalText,
		entities.JoinKeywords(n.Keywords), n.SourceURL, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("note id: %w", err)
	}
	return entities.NoteID(id), nil
}

func (s *Store) GetNote(ctx context.Context, id entities.NoteID) (*entities.NoteDetail, error) {
	var d entities.NoteDetail
	var pageID, pageURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title, t.name, t.subject, s.original_text, s.summary_text,
		       s.keywords, s.source_url, s.created_at, s.notion_page_id, s.notion_url
		FROM summaries s
		JOIN topics t ON s.topic_id = t.id
		WHERE s.id = ?`, id,
	).Scan(&d.ID, &d.Title, &d.Topic, &d.Subject, &d.OriginalText, &d.SummaryText,
		&d.Keywords, &d.SourceURL, &d.CreatedAt, &pageID, &pageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}
	d.MirrorPageID = pageID.String
	d.MirrorURL = pageURL.String
	return &d, nil
}

// ListNotes returns notes newest first. A negative limit means no limit and
// a negative offset counts as zero, as in SQLite's own LIMIT clause.
func (s *Store) ListNotes(ctx context.Context, limit, offset int) ([]entities.NoteSummary, error) {
	if limit < 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, t.name, t.subject, s.created_at
		FROM summaries s
		JOIN topics t ON s.topic_id = t.id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []entities.NoteSummary{}
	for rows.Next() {
		var n entities.NoteSummary
		if err := rows.Scan(&n.ID, &n.Title, &n.Topic, &n.Subject, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) SetNoteMirror(ctx context.Context, id entities.NoteID, pageID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE summaries SET notion_page_id = ?, notion_url = ? WHERE id = ? AND notion_page_id IS NULL`,
		pageID, url, id,
	)
	if err != nil {
		return fmt.Errorf("set mirror for note %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("note mirror unchanged", zap.Int64("note_id", int64(id)))
	}
	return nil
}

// ─── Aggregates ──────────────────────────────────────────────────────────────

func (s *Store) Counts(ctx context.Context) (int, int, error) {
	var topics, notes int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM topics), (SELECT COUNT(*) FROM summaries)`,
	).Scan(&topics, &notes)
	if err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return topics, notes, nil
}

func (s *Store) TopicsWithCounts(ctx context.Context) ([]entities.TopicWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.subject, COUNT(s.id)
		FROM topics t
		LEFT JOIN summaries s ON s.topic_id = t.id
		GROUP BY t.id
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("topic counts: %w", err)
	}
	defer rows.Close()

	out := []entities.TopicWithCount{}
	for rows.Next() {
		var t entities.TopicWithCount
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.NoteCount); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*entities.Stats, error) {
	st := &entities.Stats{}

	var err error
	if st.Topics, st.Notes, err = s.Counts(ctx); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summaries WHERE notion_page_id IS NOT NULL`,
	).Scan(&st.MirroredNotes); err != nil {
		return nil, fmt.Errorf("count mirrored: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.subject, COUNT(s.id) AS n
		FROM topics t
		LEFT JOIN summaries s ON s.topic_id = t.id
		GROUP BY t.subject
		ORDER BY n DESC, t.subject`)
	if err != nil {
		return nil, fmt.Errorf("notes by subject: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc entities.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan subject count: %w", err)
		}
		st.NotesBySubject = append(st.NotesBySubject, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	st.UniqueKeywords, err = s.countKeywords(ctx)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// countKeywords counts distinct keywords across notes, case-insensitively.
func (s *Store) countKeywords(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keywords FROM summaries`)
	if err != nil {
		return 0, fmt.Errorf("keywords: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return 0, fmt.Errorf("scan keywords: %w", err)
		}
		for _, k := range entities.SplitKeywords(kw) {
			if k = strings.ToLower(k); k != "" {
				seen[k] = struct{}{}
			}
		}
	}
	return len(seen), rows.Err()
}

var _ ports.Store = (*Store)(nil)
