package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/audit"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validator"
	"github.com/rs/zerolog"
)

const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

type Config struct {
	Provider    string
	Endpoint    string
	Model       string
	APIKey      string
	Timeout     time.Duration
	RateLimit   float64
	RateBurst   int
	AWSRegion   string
	LogLevel    string
	AuditDBPath string
}

type Dependencies struct {
	Guard    *guard.Guard
	Registry *validator.Registry
	Recorder audit.Recorder
	Metrics  *metrics.Metrics
	Logger   *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		Provider:    getEnv("LLM_PROVIDER", ProviderOpenAI),
		Endpoint:    getEnv("LLM_ENDPOINT", ""),
		Model:       getEnv("LLM_MODEL", ""),
		APIKey:      getEnv("LLM_API_KEY", ""),
		Timeout:     getEnvDuration("LLM_TIMEOUT", 0),
		RateLimit:   getEnvFloat("LLM_RATE_LIMIT", 0),
		RateBurst:   getEnvInt("LLM_RATE_BURST", 1),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AuditDBPath: getEnv("AUDIT_DB_PATH", ""),
	}
}

// Wire builds the guard and everything it depends on. Options are passed
// through to guard.New, after the ones Wire sets itself.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger, opts ...guard.Option) (*Dependencies, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	guardConfig, err := config.LoadGuardConfig(config.Overrides{
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load validator config: %w", err)
	}

	factory, err := createClientFactory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	pool := llm.NewPool(factory, m, logger)

	registry := validator.NewRegistry()
	if err := validator.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	entries, err := guard.BuildEntries(guardConfig, registry, validator.Dependencies{
		Classifiers: validator.FromPool(pool),
		Logger:      logger,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build validators from config: %w", err)
	}

	recorder, err := createRecorder(cfg, logger)
	if err != nil {
		return nil, err
	}

	guardOpts := append([]guard.Option{
		guard.WithRecorder(recorder),
		guard.WithMetrics(m),
		guard.WithLogger(logger),
	}, opts...)

	g, err := guard.New(entries, guardOpts...)
	if err != nil {
		recorder.Close()
		return nil, fmt.Errorf("failed to create guard: %w", err)
	}

	return &Dependencies{
		Guard:    g,
		Registry: registry,
		Recorder: recorder,
		Metrics:  m,
		Logger:   logger,
	}, nil
}

func (d *Dependencies) Close() error {
	if d.Recorder == nil {
		return nil
	}
	return d.Recorder.Close()
}

func createClientFactory(ctx context.Context, cfg *Config) (llm.ClientFactory, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return gpt.NewFactory(gpt.Options{
			APIKey:    cfg.APIKey,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}), nil
	case ProviderBedrock:
		return bedrock.NewFactory(ctx, cfg.AWSRegion), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

func createRecorder(cfg *Config, logger *zerolog.Logger) (audit.Recorder, error) {
	if cfg.AuditDBPath == "" {
		return audit.NopRecorder{}, nil
	}

	recorder, err := audit.NewSQLiteRecorder(cfg.AuditDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	logger.Info().Str("path", cfg.AuditDBPath).Msg("audit recording enabled")
	return recorder, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
