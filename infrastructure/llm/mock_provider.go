package llm

import (
	"context"
	"fmt"
	"sync"

	"studycapture/application/ports"
)

// MockProvider replays scripted replies. It serves tests and offline runs
// where no model server is available.
type MockProvider struct {
	mu       sync.Mutex
	replies  []Reply
	fallback Reply
	requests []ports.CompletionRequest
}

// Reply is one scripted outcome.
type Reply struct {
	Content string
	Err     error
}

// NewMockProvider returns a provider that answers with replies in order,
// then with the last one forever. With no replies it always fails, which
// sends every classification down the keyword path.
func NewMockProvider(replies ...Reply) *MockProvider {
	m := &MockProvider{replies: replies}
	if len(replies) == 0 {
		m.fallback = Reply{Err: fmt.Errorf("mock provider has no scripted reply")}
	} else {
		m.fallback = replies[len(replies)-1]
	}
	return m
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	r := m.fallback
	if len(m.replies) > 0 {
		r, m.replies = m.replies[0], m.replies[1:]
	}
	return r.Content, r.Err
}

// Requests returns every request received so far.
func (m *MockProvider) Requests() []ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.CompletionRequest(nil), m.requests...)
}

var _ ports.TextGenerator = (*MockProvider)(nil)
