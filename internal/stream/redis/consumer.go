package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultBlock = 2 * time.Second

// Consumer reads ValidationRequests from a stream through a consumer group,
// runs the guard and appends every GuardResult to the result stream.
type Consumer struct {
	client       *redis.Client
	stream       string
	resultStream string
	groupID      string
	consumerName string
	resultMaxLen int64
	block        time.Duration
	guard        *guard.Guard
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, g *guard.Guard, logger *zerolog.Logger) *Consumer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		resultStream: cfg.ResultStream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		resultMaxLen: cfg.ResultMaxLen,
		block:        defaultBlock,
		guard:        g,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("result_stream", c.resultStream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := c.readOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("Failed to read from stream")
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

// readOnce blocks for at most c.block and processes what arrived.
func (c *Consumer) readOnce(ctx context.Context) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupID,
		Consumer: c.consumerName,
		Streams:  []string{c.stream, ">"},
		Count:    1,
		Block:    c.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	processed := 0
	for _, s := range streams {
		for _, msg := range s.Messages {
			c.process(ctx, msg)
			processed++
		}
	}
	return processed, nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var validationRequest models.ValidationRequest
	if err := json.Unmarshal([]byte(payload), &validationRequest); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID)
		return
	}

	result, err := c.guard.Validate(ctx, validationRequest)
	var validationErr *guard.ValidationError
	rejected := errors.As(err, &validationErr)
	if err != nil && !rejected {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Validation failed")
		c.publish(ctx, map[string]any{
			"event_id": validationRequest.EventID,
			"error":    err.Error(),
		})
		c.ack(ctx, msg.ID)
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to encode result")
		c.ack(ctx, msg.ID)
		return
	}

	c.publish(ctx, map[string]any{
		"event_id": result.ID,
		"outcome":  string(result.Outcome),
		"rejected": strconv.FormatBool(rejected),
		"payload":  string(encoded),
	})

	c.logger.Info().
		Str("id", msg.ID).
		Str("event_id", result.ID).
		Str("outcome", string(result.Outcome)).
		Msg("Validation complete")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) publish(ctx context.Context, values map[string]any) {
	err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultStream,
		MaxLen: c.resultMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("stream", c.resultStream).Msg("Failed to publish result")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
