package notion

import (
	"fmt"
	"strings"
)

// RichText is one segment of Notion rich text.
type RichText struct {
	Type      string    `json:"type,omitempty"`
	Text      *TextSpan `json:"text,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
}

// TextSpan is the content of a text segment.
type TextSpan struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link is a hyperlink target.
type Link struct {
	URL string `json:"url"`
}

// Plain returns the segment's visible text.
func (r RichText) Plain() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// Parent identifies where a page lives.
type Parent struct {
	Type       string `json:"type,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	// BlockID is set for pages nested under a block, such as a toggle or
	// column, rather than directly under a page.
	BlockID string `json:"block_id,omitempty"`
}

// ID returns the parent page, database or block id. Workspace-level pages
// have none.
func (p Parent) ID() string {
	switch {
	case p.PageID != "":
		return p.PageID
	case p.DatabaseID != "":
		return p.DatabaseID
	default:
		return p.BlockID
	}
}

// Property is a page property. Only title properties are read.
type Property struct {
	ID    string     `json:"id,omitempty"`
	Type  string     `json:"type,omitempty"`
	Title []RichText `json:"title,omitempty"`
}

// Page is the subset of a Notion page object the client reads.
type Page struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	URL        string              `json:"url"`
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties,omitempty"`
	// Title is present on database objects returned by search.
	Title    []RichText `json:"title,omitempty"`
	Archived bool       `json:"archived,omitempty"`
}

// PlainTitle flattens the page title to plain text. Database rows carry the
// title in a "Name" property, plain pages in "title"; any other property of
// type title is used next, and finally a top-level title array.
func (p Page) PlainTitle() string {
	for _, key := range []string{"Name", "title"} {
		if prop, ok := p.Properties[key]; ok && len(prop.Title) > 0 {
			return joinPlain(prop.Title)
		}
	}
	for _, prop := range p.Properties {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return joinPlain(prop.Title)
		}
	}
	return joinPlain(p.Title)
}

func joinPlain(segments []RichText) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Plain())
	}
	return b.String()
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query       string        `json:"query"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

// SearchFilter restricts search results by object type.
type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// CreatePageRequest is the body of POST /v1/pages.
type CreatePageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
	Children   []Block             `json:"children,omitempty"`
}

// APIError is the error object Notion returns with non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api %d %s: %s", e.Status, e.Code, e.Message)
}
