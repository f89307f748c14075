// Package notiontest provides an in-memory Notion API for tests.
package notiontest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"studycapture/application/ports"
	"studycapture/infrastructure/notion"

	"github.com/google/uuid"
)

const (
	Token   = "secret-test-token"
	Version = "2022-06-28"
	// RootID is a pre-existing page that stands in for the notes database.
	RootID = "5f0c8e6a-1b2c-4d3e-9f40-a1b2c3d4e5f6"
)

// StoredPage is a page held by the fake.
type StoredPage struct {
	ID       string
	ParentID string
	Title    string
	// TitleKey is the property name the title is stored under.
	TitleKey string
	Children []notion.Block
}

// Server is a fake Notion API. Search matches titles case-insensitively by
// substring, the way Notion's own title search behaves for short queries.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]*StoredPage
	order    []string
	calls    map[string]int
	pageSize int
	failures map[string]int
}

// NewServer starts a fake with only the root page present.
func NewServer() *Server {
	s := &Server{
		pages:    make(map[string]*StoredPage),
		calls:    make(map[string]int),
		failures: make(map[string]int),
		pageSize: 100,
	}
	s.pages[RootID] = &StoredPage{ID: RootID, Title: "Study Notes", TitleKey: "title"}
	s.order = append(s.order, RootID)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", s.handleSearch)
	mux.HandleFunc("/v1/pages", s.handleCreate)
	s.Server = httptest.NewServer(s.authenticate(mux))
	return s
}

// SetSearchPageSize forces search results to be paginated.
func (s *Server) SetSearchPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailNext makes the next n calls to op ("search" or "create") fail with 500.
func (s *Server) FailNext(op string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = n
}

// Seed adds an existing page. titleKey selects the property holding the
// title: "Name" for database rows, "title" for plain pages.
func (s *Server) Seed(parentID, title, titleKey string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.pages[id] = &StoredPage{ID: id, ParentID: parentID, Title: title, TitleKey: titleKey}
	s.order = append(s.order, id)
	return id
}

// Calls returns how often op was invoked.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Page returns a copy of the page with id.
func (s *Server) Page(id string) (StoredPage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.pages {
		if ports.SamePageID(k, id) {
			return *p, true
		}
	}
	return StoredPage{}, false
}

// Children returns the pages directly under parentID in creation order.
func (s *Server) Children(parentID string) []StoredPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StoredPage
	for _, id := range s.order {
		if p := s.pages[id]; ports.SamePageID(p.ParentID, parentID) {
			out = append(out, *p)
		}
	}
	return out
}

// PageURL is the URL the fake reports for id.
func PageURL(id string) string {
	return "https://www.notion.so/" + strings.ReplaceAll(id, "-", "")
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
			return
		}
		if r.Header.Get("Notion-Version") != Version {
			writeError(w, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// consume records a call and reports whether it should fail.
func (s *Server) consume(op string) bool {
	s.calls[op]++
	if s.failures[op] > 0 {
		s.failures[op]--
		return true
	}
	return false
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req notion.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consume("search") {
		writeError(w, http.StatusInternalServerError, "internal_server_error", "search failed")
		return
	}

	q := strings.ToLower(req.Query)
	var matches []notion.Page
	for _, id := range s.order {
		p := s.pages[id]
		if strings.Contains(strings.ToLower(p.Title), q) {
			matches = append(matches, toPage(p))
		}
	}

	start := 0
	if req.StartCursor != "" {
		start, _ = strconv.Atoi(req.StartCursor)
	}
	if start > len(matches) {
		start = len(matches)
	}
	end := start + s.pageSize
	if end > len(matches) {
		end = len(matches)
	}

	resp := notion.SearchResponse{Results: matches[start:end]}
	if resp.Results == nil {
		resp.Results = []notion.Page{}
	}
	if end < len(matches) {
		next := strconv.Itoa(end)
		resp.HasMore = true
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req notion.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consume("create") {
		writeError(w, http.StatusInternalServerError, "internal_server_error", "create failed")
		return
	}

	parentID := req.Parent.ID()
	parentKnown := false
	for k := range s.pages {
		if ports.SamePageID(k, parentID) {
			parentKnown = true
			break
		}
	}
	if !parentKnown {
		writeError(w, http.StatusNotFound, "object_not_found",
			fmt.Sprintf("Could not find page with ID: %s.", parentID))
		return
	}

	title := ""
	if prop, ok := req.Properties["title"]; ok {
		for _, seg := range prop.Title {
			title += seg.Plain()
		}
	}
	if len([]rune(title)) > notion.MaxTextLength {
		writeError(w, http.StatusBadRequest, "validation_error", "title is too long")
		return
	}
	for _, b := range req.Children {
		for _, seg := range blockSegments(b) {
			if seg.Text != nil && len([]rune(seg.Text.Content)) > notion.MaxTextLength {
				writeError(w, http.StatusBadRequest, "validation_error", "text content is too long")
				return
			}
		}
	}

	p := &StoredPage{
		ID:       uuid.NewString(),
		ParentID: parentID,
		Title:    title,
		TitleKey: "title",
		Children: req.Children,
	}
	s.pages[p.ID] = p
	s.order = append(s.order, p.ID)

	writeJSON(w, http.StatusOK, toPage(p))
}

func blockSegments(b notion.Block) []notion.RichText {
	switch {
	case b.BulletedListItem != nil:
		return b.BulletedListItem.RichText
	case b.Paragraph != nil:
		return b.Paragraph.RichText
	}
	return nil
}

func toPage(p *StoredPage) notion.Page {
	page := notion.Page{
		Object: "page",
		ID:     p.ID,
		URL:    PageURL(p.ID),
		Properties: map[string]notion.Property{
			p.TitleKey: {
				ID:    "title",
				Type:  "title",
				Title: []notion.RichText{{Type: "text", PlainText: p.Title, Text: &notion.TextSpan{Content: p.Title}}},
			},
		},
	}
	if p.ParentID == "" {
		page.Parent = notion.Parent{Type: "workspace"}
	} else {
		page.Parent = notion.Parent{Type: "page_id", PageID: p.ParentID}
	}
	return page
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}
