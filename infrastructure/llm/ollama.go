// Package llm provides generative-text providers for classification.
package llm

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

// maxErrorBody bounds how much of a failed response is echoed into errors.
const maxErrorBody = 512

// OllamaProvider talks to Ollama's native chat endpoint.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewOllamaProvider creates a provider for cfg. A zero cfg.Timeout leaves
// requests unbounded; the caller's context still applies.
func NewOllamaProvider(cfg config.LLM, breaker *resilience.Breaker, logger *zap.Logger) *OllamaProvider {
	return &OllamaProvider{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}

// BuildURL constructs the chat endpoint from the configured base URL.
func (o *OllamaProvider) BuildURL() string {
	base := strings.TrimSuffix(o.baseURL, "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	if strings.HasSuffix(base, "/api/chat") {
		return base
	}
	return base + "/api/chat"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// BuildRequestBody creates the non-streaming chat request for req.
func (o *OllamaProvider) BuildRequestBody(req ports.CompletionRequest) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	return json.Marshal(chatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options:  chatOptions{Temperature: req.Temperature},
	})
}

// ParseResponse extracts the assistant message from a chat response body.
func (o *OllamaProvider) ParseResponse(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return resp.Message.Content, nil
}

// Complete sends one chat exchange and returns the model's reply.
func (o *OllamaProvider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	return resilience.Call(o.breaker, func() (string, error) {
		return o.complete(ctx, req)
	})
}

func (o *OllamaProvider) complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	payload, err := o.BuildRequestBody(req)
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BuildURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	o.logger.Debug("calling ollama", zap.String("model", o.model), zap.String("url", httpReq.URL.String()))

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, excerpt(body))
	}
	return o.ParseResponse(body)
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

var _ ports.TextGenerator = (*OllamaProvider)(nil)
