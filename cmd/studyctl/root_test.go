package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"studycapture/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("SYNC_TO_NOTION", "false")
	t.Setenv("NOTION_API_KEY", "")
	return filepath.Join(t.TempDir(), "study.db")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReadCommands_MissingDatabase(t *testing.T) {
	db := setupEnv(t)

	for _, name := range []string{"stats", "topics", "notes"} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, name, "--db", db)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "database not found")
		})
	}
}

func TestCaptureThenInspect(t *testing.T) {
	db := setupEnv(t)

	out, err := run(t, "capture", "--db", db, "Solar panels convert sunlight")
	require.NoError(t, err)
	assert.Contains(t, out, "Note saved successfully!")
	assert.Contains(t, out, "Renewable Energy")
	assert.Contains(t, out, "(new)")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "skipped")

	out, err = run(t, "capture", "--db", db, "--title", "Wind", "Wind turbines spin")
	require.NoError(t, err)
	assert.NotContains(t, out, "(new)")

	out, err = run(t, "topics", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "📚 TOPICS")
	assert.Contains(t, out, "Renewable Energy")
	assert.Contains(t, out, "Environmental Science")

	out, err = run(t, "notes", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "RECENT NOTES (Last 10)")
	assert.Contains(t, out, "Environmental Science - Renewable Energy")
	assert.Contains(t, out, "Wind")

	out, err = run(t, "note", "--db", db, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "NOTE DETAILS (ID: 1)")
	assert.Contains(t, out, "Renewable Energy (Environmental Science)")
	assert.Contains(t, out, "Solar panels convert sunlight")
	assert.NotContains(t, out, "Source:")

	out, err = run(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Notes by Subject:")
	assert.Contains(t, out, "Environmental Science: 2")
}

func TestCapture_URL(t *testing.T) {
	db := setupEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Rooftop Solar</title><script>track()</script></head>
<body><h1>Solar roofs</h1><p>Panels feed the grid.</p></body></html>`)
	}))
	defer srv.Close()

	_, err := run(t, "capture", "--db", db, srv.URL+"/solar")
	require.NoError(t, err)

	out, err := run(t, "note", "--db", db, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rooftop Solar")
	assert.Contains(t, out, srv.URL+"/solar")
	assert.Contains(t, out, "Panels feed the grid.")
	assert.NotContains(t, out, "track()")
}

func TestCapture_FetchFailure(t *testing.T) {
	db := setupEnv(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, "capture", "--db", db, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract content from URL")
}

func TestArgumentErrors(t *testing.T) {
	db := setupEnv(t)
	_, err := run(t, "capture", "--db", db, "Cells divide by mitosis")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero limit", []string{"notes", "0"}, "limit must be a positive integer"},
		{"word limit", []string{"notes", "many"}, "limit must be a positive integer"},
		{"non-integer id", []string{"note", "abc"}, "note id must be an integer"},
		{"missing note", []string{"note", "42"}, "note 42 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--db", db)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRenderTable_Empty(t *testing.T) {
	var out bytes.Buffer
	renderTopics(&out, nil)
	assert.Contains(t, out.String(), "No data found.")
}

func TestRenderNote_Preview(t *testing.T) {
	long := strings.Repeat("é", previewLength+50)

	var out bytes.Buffer
	renderNote(&out, &entities.NoteDetail{
		ID:           7,
		Title:        "Accents",
		Topic:        "Phonetics",
		Subject:      "Linguistics",
		OriginalText: long,
		Keywords:     "accents",
		MirrorURL:    "https://notion.so/page",
	})

	s := out.String()
	assert.Contains(t, s, strings.Repeat("é", previewLength)+"...")
	assert.NotContains(t, s, strings.Repeat("é", previewLength+1))
	assert.Contains(t, s, "https://notion.so/page")

	out.Reset()
	renderNote(&out, &entities.NoteDetail{ID: 8, OriginalText: "short"})
	assert.Contains(t, out.String(), "  short\n")
	assert.NotContains(t, out.String(), "short...")
}
