package llm

import (
	"context"
	"sync"
)

// MockClient is a Client implementation for tests.
// It returns canned responses and records every request it receives.
// Safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	fixed        string
	responses    []string
	next         int
	err          error
	completeFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Calls holds every request received, in order.
	Calls []CompletionRequest
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that always returns the fixed response.
func NewMockClient(response string) *MockClient {
	return &MockClient{fixed: response}
}

// WithResponses sets a sequence of responses returned in order,
// cycling back to the first after the last.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every Complete call return err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc installs a custom handler, overriding canned responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.completeFunc
	err := m.err
	content := m.fixed
	if len(m.responses) > 0 {
		content = m.responses[m.next%len(m.responses)]
		m.next++
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{
		Content:      content,
		FinishReason: "stop",
	}, nil
}

// CallCount returns the number of Complete calls received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// Reset clears recorded calls and restarts the response sequence.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.next = 0
}
