package llm

import (
	"context"
	"sync"
)

// MockProvider is a deterministic Provider for tests and offline runs.
// When Respond is set it computes the reply, otherwise Response is returned.
type MockProvider struct {
	Response string
	Respond  func(req CompletionRequest) (string, error)
	Err      error

	mu    sync.Mutex
	calls []CompletionRequest
}

// NewMockProvider returns a provider that always answers with response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

// Model returns a fixed identifier.
func (m *MockProvider) Model() string { return "mock" }

// Complete records the request and returns the configured reply.
func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Respond != nil {
		out, err := m.Respond(req)
		if err != nil {
			return nil, err
		}
		return &CompletionResponse{Content: out}, nil
	}
	return &CompletionResponse{Content: m.Response}, nil
}

// Calls returns a copy of every request seen so far.
func (m *MockProvider) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Complete was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
