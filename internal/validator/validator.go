package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=validator.go -destination=mocks/mock_validator.go -package=mocks

// Validator inspects one string and decides pass or fail. Implementations are
// immutable after construction and safe for concurrent use. Validate never
// returns an error: every failure mode is expressed as a result.
type Validator interface {
	Name() string
	Validate(ctx context.Context, value string, metadata map[string]any) models.ValidationResult
}

// Classifier is the part of llm.Classifier validators depend on.
type Classifier interface {
	Classify(ctx context.Context, systemPrompt string, userText string, settings llm.ModelSettings) (string, error)
}

// ClassifierProvider returns the classifier serving an endpoint.
type ClassifierProvider func(endpoint string) (Classifier, error)

// FromPool adapts an llm.Pool to a ClassifierProvider.
func FromPool(pool *llm.Pool) ClassifierProvider {
	return func(endpoint string) (Classifier, error) {
		c, err := pool.Classifier(endpoint)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Dependencies are handed to every factory at build time.
type Dependencies struct {
	Classifiers ClassifierProvider
	Logger      *zerolog.Logger
}

var (
	ErrUnknownValidator   = errors.New("unknown validator")
	ErrDuplicateValidator = errors.New("validator already registered")
)

func (d Dependencies) logger() *zerolog.Logger {
	if d.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return d.Logger
}

func (d Dependencies) classifier(endpoint string) (Classifier, error) {
	if d.Classifiers == nil {
		return nil, fmt.Errorf("no classifier provider configured")
	}
	return d.Classifiers(endpoint)
}

// indeterminate is the result of a classifier that could not be consulted.
func indeterminate(name string, err error) models.ValidationResult {
	return models.Indeterminate(name, models.MethodLLM, fmt.Sprintf("could not complete validation: %v", err))
}
