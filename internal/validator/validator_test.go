package validator

import (
	"context"
	"sync"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
)

// MockClassifier returns a fixed answer and counts calls.
type MockClassifier struct {
	ResponseToReturn string
	ErrorToReturn    error

	mu           sync.Mutex
	calls        int
	lastPrompt   string
	lastText     string
	lastSettings llm.ModelSettings
}

func (m *MockClassifier) Classify(ctx context.Context, systemPrompt string, userText string, settings llm.ModelSettings) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastPrompt = systemPrompt
	m.lastText = userText
	m.lastSettings = settings

	if m.ErrorToReturn != nil {
		return "", m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
