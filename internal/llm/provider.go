// Package llm abstracts the external chat-completion endpoint behind a
// small synchronous Provider interface with typed error classes.
package llm

import "context"

// Provider is the chat-completion boundary. One call, one complete
// reply; no streaming.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request describes a single completion call: a system instruction,
// an ordered role-tagged history window and a token cap.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
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

// Response holds the complete reply.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// TotalTokens is the sum reported back to clients.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}
