package judgment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/readcheck/internal/llm"
)

func TestJudge_ParsesVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"isCorrect":true,"feedback":"Right."}`)})
	c := NewClient(mock, DefaultConfig())

	v, err := c.Judge(context.Background(), Request{System: "sys", Prompt: "prompt"})
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if !v.IsCorrect || v.Feedback != "Right." {
		t.Fatalf("unexpected verdict %+v", v)
	}

	calls := mock.Requests()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	req := calls[0]
	if req.System != "sys" || req.Messages[0].Content != "prompt" || req.Messages[0].Role != llm.RoleUser {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Schema != VerdictSchema {
		t.Error("expected the verdict schema")
	}
	if req.Temperature != 0.1 {
		t.Errorf("temperature = %v, want 0.1", req.Temperature)
	}
}

func TestJudge_FalseVerdictWithoutFeedback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"isCorrect":false}`)})
	v, err := NewClient(mock, DefaultConfig()).Judge(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if v.IsCorrect || v.Feedback != "" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestJudge_MissingIsCorrect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"feedback":"hmm"}`)})
	_, err := NewClient(mock, DefaultConfig()).Judge(context.Background(), Request{})

	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestJudge_NotJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`Yes, that is correct.`)})
	_, err := NewClient(mock, DefaultConfig()).Judge(context.Background(), Request{})

	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestJudge_ProviderErrorWrapped(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrServiceError{Status: 400, Err: errors.New("bad request")}})
	_, err := NewClient(mock, DefaultConfig()).Judge(context.Background(), Request{})

	var svc *llm.ErrServiceError
	if !errors.As(err, &svc) {
		t.Fatalf("expected ErrServiceError, got %v", err)
	}
}

func TestJudge_NotConfigured(t *testing.T) {
	_, err := NewClient(nil, DefaultConfig()).Judge(context.Background(), Request{})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

type purposeProvider struct {
	purpose  string
	deadline bool
}

func (p *purposeProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.purpose = llm.PurposeFrom(ctx)
	_, p.deadline = ctx.Deadline()
	return &llm.Response{Content: json.RawMessage(`{"isCorrect":true}`)}, nil
}

func (p *purposeProvider) ModelID() string { return "purpose" }

func TestJudge_LabelsPurposeAndAppliesTimeout(t *testing.T) {
	p := &purposeProvider{}
	cfg := DefaultConfig()
	cfg.Timeout = time.Minute

	if _, err := NewClient(p, cfg).Judge(context.Background(), Request{}); err != nil {
		t.Fatalf("Judge failed: %v", err)
	}
	if p.purpose != Purpose {
		t.Errorf("purpose = %q, want %q", p.purpose, Purpose)
	}
	if !p.deadline {
		t.Error("expected a deadline on the provider context")
	}
}
