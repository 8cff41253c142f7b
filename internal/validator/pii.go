package validator

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

type Pattern struct {
	Name   string
	Regexp *regexp.Regexp
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// DefaultPIIPatterns returns the local checks run before the classifier.
func DefaultPIIPatterns() []Pattern {
	return []Pattern{
		{Name: "email", Regexp: emailPattern},
		{Name: "phone", Regexp: phonePattern},
	}
}

const piiDetectedByLLM = "Potential PII detected (LLM)"

// PIIValidator runs local regex checks first and only consults the
// classifier when none of them match.
type PIIValidator struct {
	patterns []Pattern
	question yesNoQuestion
}

func NewPIIValidator(opts YesNoOptions, patterns []Pattern, classifier Classifier, logger *zerolog.Logger) (*PIIValidator, error) {
	if opts.Detected == "" {
		opts.Detected = piiDetectedByLLM
	}
	q, err := newYesNoQuestion(opts, classifier, logger)
	if err != nil {
		return nil, err
	}

	for _, p := range patterns {
		if p.Regexp == nil {
			return nil, fmt.Errorf("validator %s: pattern %s is not compiled", opts.Name, p.Name)
		}
	}

	return &PIIValidator{
		patterns: append([]Pattern(nil), patterns...),
		question: q,
	}, nil
}

func (v *PIIValidator) Name() string {
	return v.question.name
}

func (v *PIIValidator) Validate(ctx context.Context, value string, metadata map[string]any) models.ValidationResult {
	now := time.Now()
	logger := v.question.logger

	logger.Trace().
		Str("validator", v.question.name).
		Int("length", len(value)).
		Msg("input received")

	for _, p := range v.patterns {
		if p.Regexp.MatchString(value) {
			logger.Trace().
				Str("validator", v.question.name).
				Str("pattern", p.Name).
				Msg("pii matched locally, skipping classifier")

			result := models.Fail(v.question.name, models.MethodRegex, fmt.Sprintf("Potential PII detected (regex: %s)", p.Name))
			result.Duration = time.Since(now)
			return result
		}
	}

	result := v.question.ask(ctx, value)
	result.Duration = time.Since(now)

	logger.Trace().
		Str("validator", v.question.name).
		Str("outcome", string(result.Outcome)).
		Msg("decision made")

	return result
}

// CompilePatterns compiles named regular expressions in order.
func CompilePatterns(named []config.PatternConfig) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(named))
	for _, n := range named {
		re, err := regexp.Compile(n.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", n.Name, err)
		}
		patterns = append(patterns, Pattern{Name: n.Name, Regexp: re})
	}
	return patterns, nil
}
