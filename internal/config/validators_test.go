package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validators.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadGuardConfig_Success(t *testing.T) {
	path := writeConfig(t, `guard:
  default_model:
    name: llama3
    endpoint: http://ollama:11434
    max_tokens: 64
    temperature: 0.0
    timeout: 10s
    retry: true

  validators:
    - name: toxic-words
      enabled: true
      on_fail: fix
      search_words: ["darn", "heck"]

    - name: detect-pii
      enabled: true
      patterns:
        - name: ssn
          regex: '\d{3}-\d{2}-\d{4}'

    - name: finance-topics
      type: detect-sensitive-topic
      enabled: true
      threshold: 30
      prompt: "Rate how much the text discusses personal finances, 0-100."
      model:
        name: mistral
        retry: false
`)
	t.Setenv("GUARD_CONFIG_PATH", path)

	cfg, err := LoadGuardConfig(Overrides{})
	if err != nil {
		t.Fatalf("LoadGuardConfig() failed: %v", err)
	}

	if len(cfg.Guard.Validators) != 3 {
		t.Fatalf("Expected 3 validators, got %d", len(cfg.Guard.Validators))
	}

	words := cfg.Guard.Validators[0]
	if words.OnFail != OnFailFix {
		t.Errorf("Expected on_fail=fix, got %s", words.OnFail)
	}
	if words.DataType != DataTypeString {
		t.Errorf("Expected data_type defaulted to string, got %s", words.DataType)
	}
	if len(words.SearchWords) != 2 || words.SearchWords[0] != "darn" {
		t.Errorf("Unexpected search words: %v", words.SearchWords)
	}

	pii := cfg.Guard.Validators[1]
	if pii.OnFail != OnFailNoop {
		t.Errorf("Expected on_fail defaulted to noop, got %s", pii.OnFail)
	}
	if len(pii.Patterns) != 1 || pii.Patterns[0].Name != "ssn" {
		t.Errorf("Unexpected patterns: %v", pii.Patterns)
	}
	if pii.Model == nil || pii.Model.Endpoint != "http://ollama:11434" {
		t.Errorf("Expected default model merged into detect-pii, got %+v", pii.Model)
	}

	finance := cfg.Guard.Validators[2]
	if finance.RegisteredType() != DetectSensitiveTopic {
		t.Errorf("Expected registered type %s, got %s", DetectSensitiveTopic, finance.RegisteredType())
	}
	if finance.Threshold == nil || *finance.Threshold != 30 {
		t.Errorf("Expected threshold 30, got %v", finance.Threshold)
	}

	settings := finance.Model.Settings()
	if settings.Model != "mistral" {
		t.Errorf("Expected model override mistral, got %s", settings.Model)
	}
	if settings.Endpoint != "http://ollama:11434" {
		t.Errorf("Expected endpoint inherited, got %s", settings.Endpoint)
	}
	if settings.MaxTokens != 64 {
		t.Errorf("Expected max_tokens inherited (64), got %d", settings.MaxTokens)
	}
	if settings.Timeout != 10*time.Second {
		t.Errorf("Expected timeout inherited (10s), got %s", settings.Timeout)
	}
	if settings.Retry {
		t.Error("Expected retry=false override")
	}
}

func TestLoadGuardConfig_EnvOverridesWin(t *testing.T) {
	path := writeConfig(t, `guard:
  default_model:
    name: llama3
    endpoint: http://ollama:11434
  validators:
    - name: detect-jailbreak
      enabled: true
`)
	t.Setenv("GUARD_CONFIG_PATH", path)

	cfg, err := LoadGuardConfig(Overrides{Model: "gpt-4o-mini", Endpoint: "https://api.openai.com"})
	if err != nil {
		t.Fatalf("LoadGuardConfig() failed: %v", err)
	}

	m := cfg.Guard.Validators[0].Model
	if m.Name != "gpt-4o-mini" || m.Endpoint != "https://api.openai.com" {
		t.Errorf("Expected env overrides applied, got %+v", m)
	}
}

func TestLoadGuardConfig_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("GUARD_CONFIG_PATH", "/nonexistent/path/validators.yaml")

	_, err := LoadGuardConfig(Overrides{})
	if err == nil {
		t.Fatal("Expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected 'failed to read config file' error, got: %v", err)
	}
}

func TestLoadGuardConfig_DefaultPathFallsBackToBuiltins(t *testing.T) {
	t.Setenv("GUARD_CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := LoadGuardConfig(Overrides{})
	if err != nil {
		t.Fatalf("LoadGuardConfig() failed: %v", err)
	}
	if len(cfg.Guard.Validators) != 5 {
		t.Errorf("Expected 5 built-in validators, got %d", len(cfg.Guard.Validators))
	}
	for _, v := range cfg.Guard.Validators {
		if v.Model == nil || v.Model.Name != "llama3" {
			t.Errorf("validator %s: expected default model llama3, got %+v", v.Name, v.Model)
		}
	}
}

func TestLoadGuardConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `guard:
  validators:
    - name: test
      invalid_indent:
    wrong_level
`)
	t.Setenv("GUARD_CONFIG_PATH", path)

	_, err := LoadGuardConfig(Overrides{})
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected 'failed to parse YAML' error, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() ValidatorConfiguration {
		return ValidatorConfiguration{Name: "toxic-words", DataType: DataTypeString, OnFail: OnFailNoop}
	}

	tests := []struct {
		name    string
		cfg     GuardConfig
		wantErr string
	}{
		{
			name:    "no validators",
			cfg:     GuardConfig{},
			wantErr: "no validators configured",
		},
		{
			name:    "missing name",
			cfg:     GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{{}}}},
			wantErr: "missing name",
		},
		{
			name:    "duplicate name",
			cfg:     GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{valid(), valid()}}},
			wantErr: "duplicate validator name",
		},
		{
			name: "unsupported data type",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", DataType: "list"},
			}}},
			wantErr: "unsupported data type",
		},
		{
			name: "threshold above range",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", Threshold: intPtr(101)},
			}}},
			wantErr: "invalid threshold",
		},
		{
			name: "threshold below range",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", Threshold: intPtr(-1)},
			}}},
			wantErr: "invalid threshold",
		},
		{
			name: "unknown on_fail",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", OnFail: "reask"},
			}}},
			wantErr: "unknown on_fail",
		},
		{
			name: "invalid regex",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", Patterns: []PatternConfig{{Name: "broken", Regex: "(unclosed"}}},
			}}},
			wantErr: "invalid pattern",
		},
		{
			name: "pattern without name",
			cfg: GuardConfig{Guard: Guard{Validators: []ValidatorConfiguration{
				{Name: "x", Patterns: []PatternConfig{{Regex: "a"}}},
			}}},
			wantErr: "missing name",
		},
		{
			name: "negative max tokens",
			cfg: GuardConfig{Guard: Guard{
				DefaultModel: ModelConfig{MaxTokens: -100},
				Validators:   []ValidatorConfiguration{valid()},
			}},
			wantErr: "negative max_tokens",
		},
		{
			name: "negative timeout",
			cfg: GuardConfig{Guard: Guard{
				Validators: []ValidatorConfiguration{
					{Name: "x", Model: &ModelConfig{Timeout: -time.Second}},
				},
			}},
			wantErr: "negative timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatalf("Expected validation error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_InvalidTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
	}{
		{"negative", -0.1},
		{"too high", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &GuardConfig{
				Guard: Guard{
					DefaultModel: ModelConfig{Temperature: floatPtr(tt.temperature)},
					Validators:   []ValidatorConfiguration{{Name: "test"}},
				},
			}

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for temperature=%f", tt.temperature)
			}
			if !strings.Contains(err.Error(), "invalid temperature") {
				t.Errorf("Expected 'invalid temperature' error, got: %v", err)
			}
		})
	}
}

func TestApplyDefaults_PopulatesDefaultModel(t *testing.T) {
	cfg := &GuardConfig{
		Guard: Guard{
			Validators: []ValidatorConfiguration{{Name: "test"}},
		},
	}

	applyDefaults(cfg)

	def := cfg.Guard.DefaultModel
	if def.MaxTokens != 256 {
		t.Errorf("Expected default max_tokens=256, got %d", def.MaxTokens)
	}
	if def.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout=30s, got %s", def.Timeout)
	}
	if def.Temperature == nil || *def.Temperature != 0.0 {
		t.Errorf("Expected default temperature=0.0, got %v", def.Temperature)
	}
	if def.Retry == nil || !*def.Retry {
		t.Error("Expected default retry=true")
	}
	if def.Endpoint != "http://localhost:11434" {
		t.Errorf("Expected default endpoint, got %s", def.Endpoint)
	}
}

func TestApplyDefaults_MergesValidatorModel(t *testing.T) {
	cfg := &GuardConfig{
		Guard: Guard{
			DefaultModel: ModelConfig{
				Name:        "llama3",
				MaxTokens:   300,
				Temperature: floatPtr(0.7),
				Retry:       boolPtr(true),
			},
			Validators: []ValidatorConfiguration{
				{Name: "a"},
				{Name: "b", Model: &ModelConfig{Temperature: floatPtr(0), MaxTokens: 10}},
			},
		},
	}

	applyDefaults(cfg)

	a := cfg.Guard.Validators[0].Model
	if a == nil {
		t.Fatal("Expected model to be created")
	}
	if a.MaxTokens != 300 || *a.Temperature != 0.7 || !*a.Retry {
		t.Errorf("Expected defaults copied, got %+v", a)
	}

	b := cfg.Guard.Validators[1].Model
	if b.MaxTokens != 10 {
		t.Errorf("Expected max_tokens=10, got %d", b.MaxTokens)
	}
	if *b.Temperature != 0 {
		t.Errorf("Expected explicit temperature 0 to win, got %f", *b.Temperature)
	}
	if b.Name != "llama3" {
		t.Errorf("Expected name inherited, got %s", b.Name)
	}

	*a.Temperature = 1.0
	if *cfg.Guard.DefaultModel.Temperature != 0.7 {
		t.Error("Expected validator model not to alias the default model")
	}
}

func TestLoadGuardConfig_ShippedFile(t *testing.T) {
	t.Setenv("GUARD_CONFIG_PATH", filepath.Join("..", "..", "configs", "validators.yaml"))

	cfg, err := LoadGuardConfig(Overrides{})
	if err != nil {
		t.Fatalf("Expected shipped config to load, got %v", err)
	}

	names := map[string]ValidatorConfiguration{}
	for _, v := range cfg.Guard.Validators {
		names[v.Name] = v
	}
	for _, want := range []string{ToxicWords, DetectPII, DetectJailbreak, ToxicLanguage, DetectSensitiveTopic} {
		if !names[want].Enabled {
			t.Errorf("Expected %s to be enabled", want)
		}
	}

	sensitive := names[DetectSensitiveTopic]
	if sensitive.Model.MaxTokens != 8 || sensitive.Model.Timeout != 10*time.Second {
		t.Errorf("Expected sensitive topic model override, got %+v", sensitive.Model)
	}
	if sensitive.Model.Name != "llama3" {
		t.Errorf("Expected model name inherited, got %s", sensitive.Model.Name)
	}
	if names["profanity-words"].RegisteredType() != ToxicWords {
		t.Errorf("Expected profanity-words to build from %s", ToxicWords)
	}
}
