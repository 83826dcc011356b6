// Package llm narrates country profiles through chat-style model backends
// (Gemini, Groq-hosted Llama 3, Mistral, DeepSeek, Ollama).
package llm

import (
	"context"
	"errors"
	"time"
)

// Provider names for configuration and lookup.
const (
	ProviderGemini   = "gemini"
	ProviderLlama3   = "llama3"
	ProviderMistral  = "mistral"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Common errors returned by narrators.
var (
	ErrNoAPIKey        = errors.New("llm: API key not configured")
	ErrRateLimit       = errors.New("llm: rate limit exceeded")
	ErrProviderDown    = errors.New("llm: provider unavailable")
	ErrInvalidModel    = errors.New("llm: invalid model")
	ErrEmptyResponse   = errors.New("llm: empty response")
	ErrUnknownProvider = errors.New("llm: unsupported provider")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Prompt is a single-turn request: a system instruction and a user message.
type Prompt struct {
	System string
	User   string
}

// Messages returns the prompt as a chat transcript. An empty system
// instruction is left out.
func (p Prompt) Messages() []Message {
	var msgs []Message
	if p.System != "" {
		msgs = append(msgs, SystemMessage(p.System))
	}
	return append(msgs, UserMessage(p.User))
}

// Narrator turns a prompt into prose.
type Narrator interface {
	// Name returns the provider identifier (e.g. "gemini", "ollama").
	Name() string

	// Model returns the model the narrator sends requests to.
	Model() string

	// Summarize sends prompt and returns the model's text reply.
	Summarize(ctx context.Context, prompt Prompt) (string, error)
}

// DefaultTemperature keeps narration close to the data.
const DefaultTemperature = 0.2

// DefaultTimeout bounds one narration request.
const DefaultTimeout = 120 * time.Second
