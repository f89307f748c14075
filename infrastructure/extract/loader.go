// Package extract turns a capture source (raw text or a web page URL) into
// plain text ready for classification.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultUserAgent = "studycapture/2.0"
)

// skipped elements contribute no text.
var skipped = map[string]bool{"script": true, "style": true}

// Mode selects how fetched HTML is reduced.
type Mode int

const (
	// ModeText keeps one line per non-blank text node.
	ModeText Mode = iota
	// ModeMarkdown keeps headings and list structure.
	ModeMarkdown
)

// Content is a loaded source.
type Content struct {
	Text      string
	SourceURL string
	Title     string
}

// Loader fetches and reduces capture sources.
type Loader struct {
	client    *http.Client
	mode      Mode
	maxBytes  int64
	userAgent string
	converter *md.Converter
	logger    *zap.Logger
}

type Option func(*Loader)

// WithHTTPClient replaces the default client and its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

func WithMode(m Mode) Option {
	return func(l *Loader) { l.mode = m }
}

func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

func NewLoader(logger *zap.Logger, opts ...Option) *Loader {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.Remove("script", "style")

	l := &Loader{
		client:    &http.Client{Timeout: DefaultTimeout},
		maxBytes:  DefaultMaxBytes,
		userAgent: DefaultUserAgent,
		converter: converter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsURL reports whether source should be fetched rather than used as text.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load returns the text of source. URLs are fetched and stripped of markup;
// anything else is returned trimmed.
func (l *Loader) Load(ctx context.Context, source string) (*Content, error) {
	source = strings.TrimSpace(source)
	if !IsURL(source) {
		return &Content{Text: source}, nil
	}

	body, err := l.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content from URL: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to extract content from URL: parse html: %w", err)
	}

	c := &Content{SourceURL: source, Title: pageTitle(doc)}
	switch l.mode {
	case ModeMarkdown:
		out, err := l.converter.ConvertString(string(body))
		if err != nil {
			return nil, fmt.Errorf("failed to extract content from URL: convert: %w", err)
		}
		c.Text = strings.TrimSpace(out)
	default:
		c.Text = Text(doc)
	}

	l.logger.Debug("loaded page",
		zap.String("url", source),
		zap.Int("bytes", len(body)),
		zap.Int("text_length", len(c.Text)),
	)
	return c, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
}

// Text returns every non-blank text node outside script and style
// elements, trimmed and joined by newlines.
func Text(doc *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, "\n")
}

func pageTitle(doc *html.Node) string {
	var title string
	var find func(*html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(doc)
	return title
}
