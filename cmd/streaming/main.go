package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/setup"
	applogger "github.com/povarna/generative-ai-agents/guard-agent/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/stream"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load env
	envErr := godotenv.Load()

	cfg := setup.LoadConfig()
	log.Logger = applogger.New(cfg.LogLevel, true)
	logger := log.Logger
	if envErr != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	streamCfg := &stream.StreamConfig{
		Provider: os.Getenv("STREAM_PROVIDER"),
		RedisConfig: redis.NewRedisStreamConfig(
			redisAddr,
			os.Getenv("REDIS_PASSWORD"),
			os.Getenv("GUARD_REQUEST_STREAM"),
			os.Getenv("GUARD_RESULT_STREAM"),
			os.Getenv("GUARD_CONSUMER_GROUP"),
			os.Getenv("HOSTNAME"),
		),
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.Guard, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	if err := consumer.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to stop consumer")
	}
	log.Info().Msg("Guard Agent stopped")
}
