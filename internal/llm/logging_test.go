package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/readcheck/internal/store"
)

// fakeEvents captures appended events; the query methods are unused here.
type fakeEvents struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestLogging_RecordsSuccess(t *testing.T) {
	events := &fakeEvents{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"isCorrect":true}`),
		Usage:   Usage{InputTokens: 120, OutputTokens: 8},
	})
	p := WithLogging(mock, "mock", events, nil)

	ctx := WithPurpose(context.Background(), "open-answer-judgment")
	_, err := p.Generate(ctx, Request{
		System:   "grade it",
		Messages: []Message{{Role: RoleUser, Content: "answer"}},
		Schema:   &Schema{Name: "verdict", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	e := events.events[0]
	if !e.Success || e.Purpose != "open-answer-judgment" || e.Provider != "mock" || e.Model != "mock" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.InputTokens != 120 || e.OutputTokens != 8 {
		t.Errorf("tokens = %d/%d, want 120/8", e.InputTokens, e.OutputTokens)
	}
	if e.ResponseBody != `{"isCorrect":true}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	for _, want := range []string{"[system]\ngrade it", "[user]\nanswer", "[schema: verdict]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
}

func TestLogging_RecordsFailureAndKeepsError(t *testing.T) {
	events := &fakeEvents{err: errors.New("db locked")}
	upstream := &ErrServiceError{Status: 401, Err: errors.New("bad key")}
	p := WithLogging(NewMockProvider(MockResponse{Err: upstream}), "mock", events, nil)

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(events.events) != 1 || events.events[0].Success {
		t.Fatalf("expected one failed event, got %+v", events.events)
	}
	if !strings.Contains(events.events[0].ErrorMessage, "bad key") {
		t.Errorf("error message = %q", events.events[0].ErrorMessage)
	}
}

func TestWrap_LogsEveryAttempt(t *testing.T) {
	events := &fakeEvents{}
	mock := NewMockProvider(
		MockResponse{Err: &ErrServiceUnavailable{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry = RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, Multiplier: 2}

	p := Wrap(mock, cfg, events, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", mock.CallCount())
	}
	if len(events.events) != 2 || events.events[0].Success || !events.events[1].Success {
		t.Fatalf("expected a failed then a successful event, got %+v", events.events)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(mock): %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	cfg.Provider = "llama"
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}

	for _, name := range []string{"anthropic", "openai", "openrouter", "gemini"} {
		cfg := DefaultConfig()
		cfg.Provider = name
		if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
			t.Errorf("%s: expected error without an API key", name)
		}
	}
}
