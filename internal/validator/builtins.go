package validator

import (
	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
)

// RegisterBuiltins registers the built-in validators.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		name    string
		factory Factory
	}{
		{config.ToxicWords, newToxicWords},
		{config.DetectPII, newDetectPII},
		{config.DetectJailbreak, newDetectJailbreak},
		{config.ToxicLanguage, newScoreFactory(DefaultToxicLanguageThreshold, ToxicLanguagePrompt, DescribeToxicLanguage)},
		{config.DetectSensitiveTopic, newScoreFactory(DefaultSensitiveTopicThreshold, SensitiveTopicPrompt, DescribeSensitiveTopic)},
	}

	for _, b := range builtins {
		if err := r.Register(b.name, config.DataTypeString, b.factory); err != nil {
			return err
		}
	}
	return nil
}

func newToxicWords(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error) {
	words := cfg.SearchWords
	if len(words) == 0 {
		words = DefaultSearchWords
	}
	return NewWordListValidator(cfg.Name, words, deps.logger())
}

func newDetectPII(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error) {
	extra, err := CompilePatterns(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	patterns := append(DefaultPIIPatterns(), extra...)

	settings := modelSettings(cfg)
	classifier, err := deps.classifier(settings.Endpoint)
	if err != nil {
		return nil, err
	}

	return NewPIIValidator(YesNoOptions{
		Name:     cfg.Name,
		Prompt:   promptOr(cfg.Prompt, PIIPrompt),
		Detected: promptOr(cfg.Message, piiDetectedByLLM),
		Strict:   cfg.Strict,
		Settings: settings,
	}, patterns, classifier, deps.logger())
}

const jailbreakDetected = "Potential jailbreak attempt detected (LLM)"

func newDetectJailbreak(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error) {
	settings := modelSettings(cfg)
	classifier, err := deps.classifier(settings.Endpoint)
	if err != nil {
		return nil, err
	}

	return NewYesNoValidator(YesNoOptions{
		Name:     cfg.Name,
		Prompt:   promptOr(cfg.Prompt, JailbreakPrompt),
		Detected: jailbreakMessage(cfg),
		Strict:   cfg.Strict,
		Settings: settings,
	}, classifier, deps.logger())
}

func newScoreFactory(threshold int, prompt string, describe DescribeFunc) Factory {
	return func(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error) {
		settings := modelSettings(cfg)
		classifier, err := deps.classifier(settings.Endpoint)
		if err != nil {
			return nil, err
		}

		t := threshold
		if cfg.Threshold != nil {
			t = *cfg.Threshold
		}

		return NewScoreValidator(ScoreOptions{
			Name:      cfg.Name,
			Threshold: t,
			Prompt:    promptOr(cfg.Prompt, prompt),
			Settings:  settings,
			Describe:  describe,
		}, classifier, deps.logger())
	}
}

func modelSettings(cfg config.ValidatorConfiguration) llm.ModelSettings {
	if cfg.Model == nil {
		return llm.ModelSettings{Model: llm.DefaultModel, Endpoint: llm.DefaultEndpoint}
	}
	return cfg.Model.Settings()
}

// jailbreakMessage keeps the jailbreak wording for the built-in entry only;
// aliases with their own question report under their own name.
func jailbreakMessage(cfg config.ValidatorConfiguration) string {
	switch {
	case cfg.Message != "":
		return cfg.Message
	case cfg.Name == config.DetectJailbreak:
		return jailbreakDetected
	default:
		return DefaultDetectedMessage(cfg.Name)
	}
}

func promptOr(prompt string, fallback string) string {
	if prompt != "" {
		return prompt
	}
	return fallback
}
