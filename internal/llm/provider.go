// Package llm talks to the hosted models that judge open answers. Every
// provider returns schema-checked JSON and classifies upstream failures into
// the error types in errors.go, so callers never see SDK-specific errors.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured response per call.
type Provider interface {
	// Generate sends req upstream. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model requests are sent to.
	ModelID() string
}

// Request is a single generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for native structured output. Nil means free text,
	// returned raw in Response.Content.
	Schema *Schema

	MaxTokens int

	// Temperature is left to the provider default when zero.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the OpenAI schema name and
// the key of the compiled-schema cache, so keep it unique per definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage is the token count of one upstream call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
