// ABOUTME: Core types for chat completion requests and responses shared by
// ABOUTME: all provider clients.

package llm

import "context"

// Role identifies a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the input for CreateMessage. System-role messages inside
// Messages are honored by every provider; System is an optional extra
// prepended prompt.
type Request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Response is the provider-agnostic completion result.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage tracks token consumption. TotalTokens is zero when the provider
// does not report it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// Client is the interface for chat completion providers.
type Client interface {
	CreateMessage(ctx context.Context, req *Request) (*Response, error)
}

// ProviderConfig carries the per-call provider settings the chat adapters
// accept (key, endpoint, region may all arrive as invocation arguments).
type ProviderConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Region   string
}

// Factory builds a Client for one provider configuration. The chat
// adapters take a Factory so tests can substitute fakes.
type Factory func(ctx context.Context, cfg ProviderConfig) (Client, error)
