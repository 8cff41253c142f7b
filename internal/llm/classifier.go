package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/metrics"
	"github.com/rs/zerolog"
)

var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrEmptyResponse         = errors.New("classifier returned no content")
)

// Classifier turns a system prompt and a user text into the raw classification
// text of one chat completion. Every LLM-backed validator goes through it.
type Classifier struct {
	client   LLMClient
	endpoint string
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewClassifier(client LLMClient, endpoint string, m *metrics.Metrics, logger *zerolog.Logger) *Classifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Classifier{
		client:   client,
		endpoint: endpoint,
		metrics:  m,
		logger:   logger,
	}
}

// Classify sends exactly two messages (system, then user) as one request and
// returns the first choice's content verbatim. Trimming is the caller's job.
func (c *Classifier) Classify(ctx context.Context, systemPrompt string, userText string, settings ModelSettings) (string, error) {
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	request := LLMRequest{
		Model: settings.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userText},
		},
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}

	c.logger.Trace().
		Str("endpoint", c.endpoint).
		Str("model", settings.Model).
		Float64("temperature", settings.Temperature).
		Msg("classifier call issued")

	now := time.Now()
	var resp *LLMResponse
	var err error
	if settings.Retry {
		resp, err = c.client.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = c.client.InvokeModel(ctx, request)
	}

	if err != nil {
		c.metrics.ObserveClassifier(c.endpoint, "error", time.Since(now))
		c.logger.Debug().
			Err(err).
			Str("endpoint", c.endpoint).
			Str("model", settings.Model).
			Msg("classifier call failed")
		return "", fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	if resp == nil || resp.Content == "" {
		c.metrics.ObserveClassifier(c.endpoint, "empty", time.Since(now))
		return "", ErrEmptyResponse
	}

	c.metrics.ObserveClassifier(c.endpoint, "ok", time.Since(now))
	c.logger.Trace().
		Str("endpoint", c.endpoint).
		Str("content", resp.Content).
		Dur("duration", time.Since(now)).
		Msg("classifier response received")

	return resp.Content, nil
}

func (c *Classifier) Endpoint() string {
	return c.endpoint
}
