package config

import (
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
)

// GuardConfig is the root of configs/validators.yaml
type GuardConfig struct {
	Guard Guard `yaml:"guard"`
}

type Guard struct {
	DefaultModel ModelConfig              `yaml:"default_model"`
	Validators   []ValidatorConfiguration `yaml:"validators"`
}

// ModelConfig describes the classifier call of an LLM-backed validator.
// Pointer fields distinguish "not set" from an explicit zero when a validator
// overrides the default model.
type ModelConfig struct {
	Name        string        `yaml:"name"`
	Endpoint    string        `yaml:"endpoint"`
	Temperature *float64      `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	Retry       *bool         `yaml:"retry"`
}

type ValidatorConfiguration struct {
	Name string `yaml:"name"`
	// Type is the registered validator this entry builds. Defaults to Name.
	Type        string          `yaml:"type"`
	DataType    string          `yaml:"data_type"`
	Enabled     bool            `yaml:"enabled"`
	Description string          `yaml:"description"`
	OnFail      string          `yaml:"on_fail"`
	SearchWords []string        `yaml:"search_words"`
	Patterns    []PatternConfig `yaml:"patterns"`
	Threshold   *int            `yaml:"threshold"`
	Prompt      string          `yaml:"prompt"`
	// Message replaces the Fail message of LLM yes/no validators.
	Message string       `yaml:"message"`
	Strict  bool         `yaml:"strict"`
	Model   *ModelConfig `yaml:"model"`
}

type PatternConfig struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

// RegisteredType returns the registry name the entry is built from.
func (v ValidatorConfiguration) RegisteredType() string {
	if v.Type != "" {
		return v.Type
	}
	return v.Name
}

// Settings converts a merged model configuration into classifier settings.
func (m ModelConfig) Settings() llm.ModelSettings {
	settings := llm.ModelSettings{
		Model:     m.Name,
		Endpoint:  m.Endpoint,
		MaxTokens: m.MaxTokens,
		Timeout:   m.Timeout,
	}
	if m.Temperature != nil {
		settings.Temperature = *m.Temperature
	}
	if m.Retry != nil {
		settings.Retry = *m.Retry
	}
	return settings
}

const DataTypeString = "string"

// On-fail policies selectable from YAML.
const (
	OnFailNoop      = "noop"
	OnFailFilter    = "filter"
	OnFailException = "exception"
	OnFailFix       = "fix"
)

var onFailPolicies = map[string]bool{
	OnFailNoop:      true,
	OnFailFilter:    true,
	OnFailException: true,
	OnFailFix:       true,
}
