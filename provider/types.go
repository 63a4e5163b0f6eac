package provider

import "time"

// Request configures one completion call.
type Request struct {
	// Model is the model identifier to request (backend-specific name).
	Model string `json:"model,omitempty"`

	// Messages is the conversation to send, in order.
	Messages []Message `json:"messages"`

	// MaxTokens limits the response length. 0 uses the backend default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls response randomness (0.0 = deterministic).
	Temperature float64 `json:"temperature,omitempty"`
}

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response is the output of a completion call.
type Response struct {
	// Content is the completion text: the choices' message contents
	// concatenated in array order. Untrusted until parsed.
	Content string `json:"content"`

	// Model is the model that actually served the request.
	Model string `json:"model"`

	// FinishReason indicates why the model stopped ("stop", "length", ...).
	FinishReason string `json:"finish_reason"`

	// Usage tracks token consumption for this request.
	Usage TokenUsage `json:"usage"`

	// Duration is the wall-clock time of the round trip.
	Duration time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
