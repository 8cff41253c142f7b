package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

// yesNoQuestion asks the classifier a binary question about a value. A "yes"
// (after trimming and lowercasing) is a detection. Any other answer passes
// unless strict is set, in which case only "no" passes.
type yesNoQuestion struct {
	name       string
	prompt     string
	detected   string
	strict     bool
	settings   llm.ModelSettings
	classifier Classifier
	logger     *zerolog.Logger
}

func (q *yesNoQuestion) ask(ctx context.Context, value string) models.ValidationResult {
	q.logger.Trace().
		Str("validator", q.name).
		Str("model", q.settings.Model).
		Msg("asking classifier")

	raw, err := q.classifier.Classify(ctx, q.prompt, value, q.settings)
	if err != nil {
		q.logger.Warn().Err(err).Str("validator", q.name).Msg("classifier call failed")
		return indeterminate(q.name, err)
	}

	answer := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case answer == "yes":
		return models.Fail(q.name, models.MethodLLM, q.detected)
	case answer == "no":
		return models.Pass(q.name, models.MethodLLM)
	case q.strict:
		return models.Indeterminate(q.name, models.MethodLLM, fmt.Sprintf("classifier returned an unrecognized answer %q", raw))
	default:
		q.logger.Warn().
			Str("validator", q.name).
			Str("answer", raw).
			Msg("classifier answer is neither yes nor no, passing")
		return models.Pass(q.name, models.MethodLLM)
	}
}

// DefaultDetectedMessage is the Fail message of a yes/no validator built
// without one.
func DefaultDetectedMessage(name string) string {
	return fmt.Sprintf("Detected by %s (LLM)", name)
}

type YesNoOptions struct {
	Name     string
	Prompt   string
	Detected string
	Strict   bool
	Settings llm.ModelSettings
}

// YesNoValidator fails when the classifier answers "yes" to its prompt.
type YesNoValidator struct {
	question yesNoQuestion
}

func NewYesNoValidator(opts YesNoOptions, classifier Classifier, logger *zerolog.Logger) (*YesNoValidator, error) {
	q, err := newYesNoQuestion(opts, classifier, logger)
	if err != nil {
		return nil, err
	}
	return &YesNoValidator{question: q}, nil
}

func newYesNoQuestion(opts YesNoOptions, classifier Classifier, logger *zerolog.Logger) (yesNoQuestion, error) {
	if classifier == nil {
		return yesNoQuestion{}, fmt.Errorf("validator %s: classifier is required", opts.Name)
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return yesNoQuestion{}, fmt.Errorf("validator %s: prompt is required", opts.Name)
	}
	if strings.TrimSpace(opts.Detected) == "" {
		opts.Detected = DefaultDetectedMessage(opts.Name)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return yesNoQuestion{
		name:       opts.Name,
		prompt:     opts.Prompt,
		detected:   opts.Detected,
		strict:     opts.Strict,
		settings:   opts.Settings,
		classifier: classifier,
		logger:     logger,
	}, nil
}

func (v *YesNoValidator) Name() string {
	return v.question.name
}

func (v *YesNoValidator) Validate(ctx context.Context, value string, metadata map[string]any) models.ValidationResult {
	now := time.Now()

	result := v.question.ask(ctx, value)
	result.Duration = time.Since(now)

	v.question.logger.Trace().
		Str("validator", v.question.name).
		Str("outcome", string(result.Outcome)).
		Msg("decision made")

	return result
}
