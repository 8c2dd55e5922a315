package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockVerdict scripts a judgment verdict.
func MockVerdict(isCorrect bool, feedback string) MockResponse {
	b, _ := json.Marshal(map[string]any{"isCorrect": isCorrect, "feedback": feedback})
	return MockResponse{Content: b, Usage: Usage{InputTokens: 1, OutputTokens: 1, TotalTokens: 2}}
}

// MockOverload scripts a retryable upstream overload.
func MockOverload() MockResponse {
	return MockResponse{Err: &ErrServiceUnavailable{}}
}

// MockProvider replays a script of responses in order and records every
// request. Once the script is used up it answers with the fallback, which
// defaults to an overload.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	fallback MockResponse
	requests []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script, fallback: MockOverload()}
}

// WithFallback sets the reply used after the script runs out.
func (m *MockProvider) WithFallback(resp MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
	return m
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	next := m.fallback
	if len(m.script) > 0 {
		next, m.script = m.script[0], m.script[1:]
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
