package llm

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Defaults for a local Ollama server.
const (
	DefaultEndpoint = "http://localhost:11434"
	DefaultModel    = "llama3"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type LLMResponse struct {
	Content    string
	StopReason string
}

// ModelSettings is the per-validator model configuration.
type ModelSettings struct {
	Model       string
	Endpoint    string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Retry       bool
}
