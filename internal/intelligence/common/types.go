// Package common holds the chat-completion backend shared by the semantic
// detectors.
package common

import "context"

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ---------------------------------------------------------------------------
// ChatClient interface
// ---------------------------------------------------------------------------

// ChatClient performs one non-streaming chat completion.  Implementations
// must not retry.
type ChatClient interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ---------------------------------------------------------------------------
// Request / response types
// ---------------------------------------------------------------------------

// ChatMessage is one turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the wire body posted to <base>/chat/completions.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// Usage mirrors the token accounting block of the reply.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse carries the first choice of a completion.
type ChatResponse struct {
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
}

// ChatClientFunc adapts a plain function to ChatClient.
type ChatClientFunc func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

// Complete calls f.
func (f ChatClientFunc) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return f(ctx, req)
}

//Personal.AI order the ending
