package validator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

const (
	minScore = 0
	maxScore = 100

	DefaultToxicLanguageThreshold  = 70
	DefaultSensitiveTopicThreshold = 50
)

// DescribeFunc builds the failure message of a score above the threshold.
type DescribeFunc func(value string, score int, threshold int) string

func DescribeToxicLanguage(value string, score int, threshold int) string {
	return fmt.Sprintf("%q failed validation. Score %d is above threshold of %d.", value, score, threshold)
}

func DescribeSensitiveTopic(value string, score int, threshold int) string {
	return fmt.Sprintf("Potentially sensitive topic detected in %q (score: %d, threshold: %d).", value, score, threshold)
}

type ScoreOptions struct {
	Name      string
	Threshold int
	Prompt    string
	Settings  llm.ModelSettings
	Describe  DescribeFunc
}

// ScoreValidator asks the classifier for an integer score in [0,100] and
// fails when it is strictly greater than the threshold.
type ScoreValidator struct {
	name       string
	threshold  int
	prompt     string
	settings   llm.ModelSettings
	describe   DescribeFunc
	classifier Classifier
	logger     *zerolog.Logger
}

func NewScoreValidator(opts ScoreOptions, classifier Classifier, logger *zerolog.Logger) (*ScoreValidator, error) {
	if classifier == nil {
		return nil, fmt.Errorf("validator %s: classifier is required", opts.Name)
	}
	if opts.Threshold < minScore || opts.Threshold > maxScore {
		return nil, fmt.Errorf("validator %s: threshold %d out of range [%d, %d]", opts.Name, opts.Threshold, minScore, maxScore)
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return nil, fmt.Errorf("validator %s: prompt is required", opts.Name)
	}
	if opts.Describe == nil {
		opts.Describe = DescribeToxicLanguage
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &ScoreValidator{
		name:       opts.Name,
		threshold:  opts.Threshold,
		prompt:     opts.Prompt,
		settings:   opts.Settings,
		describe:   opts.Describe,
		classifier: classifier,
		logger:     logger,
	}, nil
}

func (v *ScoreValidator) Name() string {
	return v.name
}

func (v *ScoreValidator) Threshold() int {
	return v.threshold
}

func (v *ScoreValidator) Validate(ctx context.Context, value string, metadata map[string]any) models.ValidationResult {
	now := time.Now()
	result := v.evaluate(ctx, value)
	result.Duration = time.Since(now)

	v.logger.Trace().
		Str("validator", v.name).
		Str("outcome", string(result.Outcome)).
		Msg("decision made")

	return result
}

func (v *ScoreValidator) evaluate(ctx context.Context, value string) models.ValidationResult {
	v.logger.Trace().
		Str("validator", v.name).
		Int("length", len(value)).
		Msg("input received")

	raw, err := v.classifier.Classify(ctx, v.prompt, value, v.settings)
	if err != nil {
		v.logger.Warn().Err(err).Str("validator", v.name).Msg("classifier call failed")
		return indeterminate(v.name, err)
	}

	score, ok := parseScore(raw)
	if !ok {
		v.logger.Warn().
			Str("validator", v.name).
			Str("response", raw).
			Msg("classifier returned an invalid score")
		return models.Indeterminate(v.name, models.MethodLLM, fmt.Sprintf("invalid score: classifier returned %q", raw))
	}

	v.logger.Trace().
		Str("validator", v.name).
		Int("score", score).
		Int("threshold", v.threshold).
		Msg("score received")

	if score > v.threshold {
		return models.Fail(v.name, models.MethodLLM, v.describe(value, score, v.threshold))
	}
	return models.Pass(v.name, models.MethodLLM)
}

// parseScore accepts a bare integer in [0,100], surrounding whitespace allowed.
func parseScore(raw string) (int, bool) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	if score < minScore || score > maxScore {
		return 0, false
	}
	return score, true
}
