package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
)

// Invoker is the subset of the Bedrock runtime API used by the client.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	Client Invoker
	Retry  llm.RetryPolicy
}

func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Client{
		Client: bedrockruntime.NewFromConfig(cfg),
		Retry:  llm.DefaultRetryPolicy,
	}, nil
}

// NewFactory returns a factory that ignores the endpoint: Bedrock is addressed by region.
func NewFactory(ctx context.Context, region string) llm.ClientFactory {
	return func(_ string) (llm.LLMClient, error) {
		return NewClient(ctx, region)
	}
}
