// Package llm wraps the chat-completion APIs used to write question
// explanations behind one Provider interface.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion.
type Provider interface {
	// Generate sends req. With a Schema set, Content is JSON validated
	// against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a request with a single user message.
func UserPrompt(text string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: text}}}
}

// Schema is the JSON Schema a structured response must satisfy. Name is
// used as the schema or tool name by providers that need one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a completed generation.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
