package llm

import (
	"fmt"
	"sync"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/metrics"
	"github.com/rs/zerolog"
)

// Pool hands out one Classifier per endpoint, creating clients lazily.
// It is only used while validators are being built.
type Pool struct {
	mu          sync.Mutex
	factory     ClientFactory
	classifiers map[string]*Classifier
	metrics     *metrics.Metrics
	logger      *zerolog.Logger
}

func NewPool(factory ClientFactory, m *metrics.Metrics, logger *zerolog.Logger) *Pool {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pool{
		factory:     factory,
		classifiers: make(map[string]*Classifier),
		metrics:     m,
		logger:      logger,
	}
}

func (p *Pool) Classifier(endpoint string) (*Classifier, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.classifiers[endpoint]; ok {
		return c, nil
	}

	if p.factory == nil {
		return nil, fmt.Errorf("no client factory configured for endpoint %s", endpoint)
	}

	client, err := p.factory(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for endpoint %s: %w", endpoint, err)
	}

	c := NewClassifier(client, endpoint, p.metrics, p.logger)
	p.classifiers[endpoint] = c

	p.logger.Info().Str("endpoint", endpoint).Msg("classifier client created")

	return c, nil
}
