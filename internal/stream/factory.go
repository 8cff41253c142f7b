package stream

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	redisconn "github.com/povarna/generative-ai-agents/guard-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/stream/redis"
	"github.com/rs/zerolog"
)

const connectRetries = 5

type StreamConfig struct {
	Provider    string // redis
	RedisConfig *redis.RedisStreamConfig
}

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	g *guard.Guard,
	logger *zerolog.Logger,
) (StreamConsumer, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "redis"
	}

	switch provider {
	case "redis":
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := redisconn.ConnectRedis(
			ctx,
			cfg.RedisConfig.RedisAddr,
			cfg.RedisConfig.RedisPassword,
			connectRetries,
		)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(client, cfg.RedisConfig, g, logger), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
