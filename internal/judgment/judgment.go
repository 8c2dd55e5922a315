// Package judgment asks an LLM for a structured correctness verdict.
package judgment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/readcheck/internal/llm"
)

// Purpose labels judgment calls in the request event log.
const Purpose = "open-answer-judgment"

// Config holds generation settings for judgment calls.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds one Judge call including retries. Zero means no bound
	// beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns the grading defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.1,
		Timeout:     30 * time.Second,
	}
}

// Request is one judgment prompt.
type Request struct {
	System string
	Prompt string
}

// Verdict is the judged outcome of one answer.
type Verdict struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback,omitempty"`
}

// VerdictSchema is the structured output every judgment must conform to.
var VerdictSchema = &llm.Schema{
	Name:        "open-answer-verdict",
	Description: "Whether a student's answer is correct, with short feedback for the student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "True when the answer is semantically correct",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of feedback addressed to the student",
			},
		},
		"required": []any{"isCorrect"},
	},
}

// Client sends judgment requests to a provider. The provider is expected to
// carry its own retry and logging decorators.
type Client struct {
	provider llm.Provider
	cfg      Config
}

// NewClient creates a judgment client. A nil provider yields a client whose
// every call fails with llm.ErrNotConfigured.
func NewClient(provider llm.Provider, cfg Config) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// verdictOutput distinguishes a missing isCorrect from false.
type verdictOutput struct {
	IsCorrect *bool  `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// Judge asks for a verdict on req.
func (c *Client) Judge(ctx context.Context, req Request) (Verdict, error) {
	if c == nil || c.provider == nil {
		return Verdict{}, llm.ErrNotConfigured
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: req.System,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: req.Prompt},
		},
		Schema:      VerdictSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judgment request: %w", err)
	}

	var out verdictOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Verdict{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse verdict: %w", err)}
	}
	if out.IsCorrect == nil {
		return Verdict{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("verdict is missing isCorrect")}
	}

	return Verdict{IsCorrect: *out.IsCorrect, Feedback: out.Feedback}, nil
}
