// Package advice implements the mentoring advice generator on an
// OpenAI-compatible chat completion API. A circuit breaker shields the
// assessment pipeline from a degraded upstream; callers fall back to the
// templated advice when generation fails.
package advice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/edurisk/student-risk-hub/internal/application/command"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/pkg/circuitbreaker"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the advice generation client.
type ClientConfig struct {
	// APIKey authenticates against the OpenAI-compatible endpoint.
	APIKey string

	// BaseURL overrides the default endpoint, for gateways and proxies.
	BaseURL string

	// Model is the chat completion model identifier.
	Model string

	// MaxTokens bounds the generated advice length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// BreakerThreshold is the number of consecutive failures before the
	// circuit opens. Zero uses the breaker default.
	BreakerThreshold int

	// BreakerTimeout is the open-state hold before a probe request.
	BreakerTimeout time.Duration

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:           apiKey,
		Model:            "gpt-4o-mini",
		MaxTokens:        512,
		Temperature:      0.7,
		BreakerThreshold: 3,
		BreakerTimeout:   60 * time.Second,
	}
}

// systemPrompt anchors the generator in the mentoring role regardless of the
// per-assessment prompt it receives.
const systemPrompt = "You are an experienced academic mentor at a secondary school. " +
	"You write short, concrete mentoring advice for a single student based on " +
	"the profile you are given. Answer in plain prose, no markdown headers."

// ErrGeneratorNotConfigured is returned when the client has no API key.
var ErrGeneratorNotConfigured = errors.New("advice: generator not configured")

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client generates mentoring advice through a chat completion API.
// Implements command.AdviceGenerator.
type Client struct {
	api     *openai.Client
	config  ClientConfig
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewClient creates a new advice generation client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrGeneratorNotConfigured
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 512
	}

	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.String("component", "advice_generator"))

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	breakerOpts := []circuitbreaker.Option{
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			log.Warn("advice circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	}
	if config.BreakerThreshold > 0 {
		breakerOpts = append(breakerOpts, circuitbreaker.WithFailureThreshold(config.BreakerThreshold))
	}
	if config.BreakerTimeout > 0 {
		breakerOpts = append(breakerOpts, circuitbreaker.WithTimeout(config.BreakerTimeout))
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiConfig),
		config:  config,
		breaker: circuitbreaker.New("advice-api", breakerOpts...),
		logger:  log,
	}, nil
}

// Generate produces mentoring advice for the given prompt. The context
// carries the caller's deadline; on expiry or upstream failure the error is
// mapped to the shared degradation errors so the pipeline can fall back.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.config.Model,
			MaxTokens:   c.config.MaxTokens,
			Temperature: float32(c.config.Temperature),
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 {
			return shared.ErrAdviceEmpty
		}

		text = strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return shared.ErrAdviceEmpty
		}

		return nil
	})
	if err != nil {
		return "", c.mapError(err)
	}

	return text, nil
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// mapError translates transport and API errors into the shared error taxonomy.
func (c *Client) mapError(err error) error {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", shared.ErrAdviceUnavailable, err)

	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", shared.ErrAdviceTimeout, err)

	case errors.Is(err, shared.ErrAdviceEmpty):
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", shared.ErrRateLimited, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrAdviceUnavailable, err)
	}

	return fmt.Errorf("%w: %v", shared.ErrAdviceFailed, err)
}

// compile-time interface check
var _ command.AdviceGenerator = (*Client)(nil)
