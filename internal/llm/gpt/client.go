package gpt

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"golang.org/x/time/rate"
)

// placeholderAPIKey is sent to local OpenAI-compatible servers (Ollama, vLLM)
// that ignore authentication.
const placeholderAPIKey = "ollama"

const defaultTimeout = 60 * time.Second

type Options struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
	// RateLimit is the maximum number of requests per second; <= 0 disables it.
	RateLimit float64
	RateBurst int
	Retry     llm.RetryPolicy
}

// Client talks to any OpenAI-compatible chat completions API.
type Client struct {
	Client   openai.Client
	Endpoint string
	Retry    llm.RetryPolicy
	limiter  *rate.Limiter
}

func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = placeholderAPIKey
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL(opts.Endpoint)),
		// Retries are driven by InvokeModelWithRetry so they stay visible to the caller.
		option.WithMaxRetries(0),
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	requestOptions = append(requestOptions, option.WithHTTPClient(httpClient))

	retry := opts.Retry
	if retry.MaxRetries == 0 {
		retry = llm.DefaultRetryPolicy
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		Client:   openai.NewClient(requestOptions...),
		Endpoint: opts.Endpoint,
		Retry:    retry,
		limiter:  limiter,
	}, nil
}

// NewFactory returns an llm.ClientFactory sharing every option except the endpoint.
func NewFactory(opts Options) llm.ClientFactory {
	return func(endpoint string) (llm.LLMClient, error) {
		o := opts
		o.Endpoint = endpoint
		return NewClient(o)
	}
}

// baseURL maps a server address such as http://localhost:11434 to its
// OpenAI-compatible root, http://localhost:11434/v1/.
func baseURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	return endpoint + "/"
}
