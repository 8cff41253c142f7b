package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/validators.yaml"

const (
	defaultMaxTokens   = 256
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.0
	defaultRetry       = true
)

// Overrides come from the environment and win over the YAML default model.
type Overrides struct {
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// LoadGuardConfig reads the validator configuration from GUARD_CONFIG_PATH
// (default configs/validators.yaml). A missing file at the default path falls
// back to DefaultConfig; a missing file at an explicit path is an error.
func LoadGuardConfig(overrides Overrides) (*GuardConfig, error) {
	path := os.Getenv("GUARD_CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg, err := readConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	applyOverrides(cfg, overrides)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validator config %s: %w", path, err)
	}

	return cfg, nil
}

func readConfig(path string) (*GuardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg GuardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	return &cfg, nil
}

func applyOverrides(cfg *GuardConfig, o Overrides) {
	if o.Model != "" {
		cfg.Guard.DefaultModel.Name = o.Model
	}
	if o.Endpoint != "" {
		cfg.Guard.DefaultModel.Endpoint = o.Endpoint
	}
	if o.Timeout > 0 {
		cfg.Guard.DefaultModel.Timeout = o.Timeout
	}
}

func applyDefaults(cfg *GuardConfig) {
	def := &cfg.Guard.DefaultModel
	if def.Name == "" {
		def.Name = llm.DefaultModel
	}
	if def.Endpoint == "" {
		def.Endpoint = llm.DefaultEndpoint
	}
	if def.MaxTokens == 0 {
		def.MaxTokens = defaultMaxTokens
	}
	if def.Timeout == 0 {
		def.Timeout = defaultTimeout
	}
	if def.Temperature == nil {
		t := defaultTemperature
		def.Temperature = &t
	}
	if def.Retry == nil {
		r := defaultRetry
		def.Retry = &r
	}

	for i := range cfg.Guard.Validators {
		v := &cfg.Guard.Validators[i]
		if v.DataType == "" {
			v.DataType = DataTypeString
		}
		if v.OnFail == "" {
			v.OnFail = OnFailNoop
		}
		v.Model = mergeModel(*def, v.Model)
	}
}

// mergeModel fills every unset field of override from def.
func mergeModel(def ModelConfig, override *ModelConfig) *ModelConfig {
	merged := def
	merged.Temperature = copyPtr(def.Temperature)
	merged.Retry = copyPtr(def.Retry)
	if override == nil {
		return &merged
	}

	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Endpoint != "" {
		merged.Endpoint = override.Endpoint
	}
	if override.MaxTokens != 0 {
		merged.MaxTokens = override.MaxTokens
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.Temperature != nil {
		merged.Temperature = copyPtr(override.Temperature)
	}
	if override.Retry != nil {
		merged.Retry = copyPtr(override.Retry)
	}
	return &merged
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (c *GuardConfig) Validate() error {
	if len(c.Guard.Validators) == 0 {
		return fmt.Errorf("no validators configured")
	}

	if err := validateModel("default_model", c.Guard.DefaultModel); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, v := range c.Guard.Validators {
		if v.Name == "" {
			return fmt.Errorf("validator at index %d: missing name", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate validator name: %s", v.Name)
		}
		seen[v.Name] = true

		if v.DataType != "" && v.DataType != DataTypeString {
			return fmt.Errorf("validator %s: unsupported data type %q", v.Name, v.DataType)
		}

		if v.Threshold != nil && (*v.Threshold < 0 || *v.Threshold > 100) {
			return fmt.Errorf("validator %s: invalid threshold %d (must be 0-100)", v.Name, *v.Threshold)
		}

		if v.OnFail != "" && !onFailPolicies[v.OnFail] {
			return fmt.Errorf("validator %s: unknown on_fail policy %q", v.Name, v.OnFail)
		}

		for j, p := range v.Patterns {
			if p.Name == "" {
				return fmt.Errorf("validator %s: pattern at index %d missing name", v.Name, j)
			}
			if _, err := regexp.Compile(p.Regex); err != nil {
				return fmt.Errorf("validator %s: invalid pattern %s: %w", v.Name, p.Name, err)
			}
		}

		if v.Model != nil {
			if err := validateModel(v.Name, *v.Model); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateModel(owner string, m ModelConfig) error {
	if m.MaxTokens < 0 {
		return fmt.Errorf("%s: negative max_tokens: %d", owner, m.MaxTokens)
	}
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return fmt.Errorf("%s: invalid temperature %f (must be 0.0-2.0)", owner, *m.Temperature)
	}
	if m.Timeout < 0 {
		return fmt.Errorf("%s: negative timeout: %s", owner, m.Timeout)
	}
	return nil
}
