// Package notion is a small client for the Notion REST API covering search
// and page creation.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"studycapture/application/ports"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/resilience"

	"go.uber.org/zap"
)

const (
	searchPageSize = 100
	// maxSearchPages caps how many result pages one search will follow.
	maxSearchPages = 10
)

// Client calls the Notion API with a bearer token.
type Client struct {
	baseURL string
	apiKey  string
	version string
	http    *http.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewClient returns a client for cfg. breaker may be nil.
func NewClient(cfg config.Notion, breaker *resilience.Breaker, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		version: cfg.Version,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// SetHeaders adds authentication and versioning headers.
func (c *Client) SetHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.version)
}

// SearchPages returns every page whose title matches query according to
// Notion's search, following pagination.
func (c *Client) SearchPages(ctx context.Context, query string) ([]ports.PageRef, error) {
	var refs []ports.PageRef
	cursor := ""

	for i := 0; i < maxSearchPages; i++ {
		req := SearchRequest{
			Query:       query,
			Filter:      &SearchFilter{Property: "object", Value: "page"},
			StartCursor: cursor,
			PageSize:    searchPageSize,
		}
		var resp SearchResponse
		if err := c.post(ctx, "/v1/search", req, &resp); err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}

		for _, p := range resp.Results {
			if p.Archived {
				continue
			}
			refs = append(refs, toRef(p))
		}

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return refs, nil
		}
		cursor = *resp.NextCursor
	}

	c.logger.Warn("search result pages truncated", zap.String("query", query), zap.Int("pages", maxSearchPages))
	return refs, nil
}

// CreatePage creates an empty child page titled title under parentID.
func (c *Client) CreatePage(ctx context.Context, parentID, title string) (*ports.PageRef, error) {
	req := CreatePageRequest{
		Parent:     Parent{PageID: parentID},
		Properties: TitleProperties(title),
	}
	return c.createPage(ctx, req)
}

// CreateLeafPage creates a note page with its body blocks under parentID.
func (c *Client) CreateLeafPage(ctx context.Context, parentID string, leaf ports.LeafPage) (*ports.PageRef, error) {
	req := CreatePageRequest{
		Parent:     Parent{PageID: parentID},
		Properties: TitleProperties(leaf.Title),
		Children:   LeafBlocks(leaf),
	}
	return c.createPage(ctx, req)
}

func (c *Client) createPage(ctx context.Context, req CreatePageRequest) (*ports.PageRef, error) {
	var page Page
	if err := c.post(ctx, "/v1/pages", req, &page); err != nil {
		return nil, fmt.Errorf("create page under %s: %w", req.Parent.ID(), err)
	}
	ref := toRef(page)
	return &ref, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	_, err := resilience.Call(c.breaker, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, path, in, out)
	})
	return err
}

func (c *Client) do(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.SetHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toRef(p Page) ports.PageRef {
	return ports.PageRef{
		ID:       p.ID,
		URL:      p.URL,
		Title:    p.PlainTitle(),
		ParentID: p.Parent.ID(),
	}
}

var _ ports.PageService = (*Client)(nil)
