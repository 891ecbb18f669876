// Package openai provides the chat-completion generation client over the
// OpenAI-compatible API, with rate limiting, retries, and a circuit breaker.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/medrag/internal/domain"
	"github.com/kailas-cloud/medrag/internal/metrics"
	"github.com/kailas-cloud/medrag/internal/prompt"
)

// Generator produces answers via the chat completion endpoint.
type Generator struct {
	client          *openai.Client
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	maxRetries      int
	breaker         *gobreaker.CircuitBreaker
	limiter         *rate.Limiter
	logger          *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	// Timeout bounds a single attempt, not the whole retry sequence.
	Timeout             time.Duration
	MaxRetries          int
	RequestsPerMin      int
	BreakerFailureRatio float64
	Logger              *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion client.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	log := cfg.Logger
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("llm circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	burst := cfg.RequestsPerMin / 10
	if burst < 1 {
		burst = 1
	}

	return &Generator{
		client:          openai.NewClientWithConfig(clientCfg),
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		timeout:         cfg.Timeout,
		maxRetries:      cfg.MaxRetries,
		breaker:         breaker,
		limiter:         rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), burst),
		logger:          log,
	}
}

// Generate sends the composed prompt as a chat completion and returns the
// model's text. Transient failures are retried up to MaxRetries times with
// exponential backoff; every failure maps to domain.ErrUpstreamUnavailable.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("retrying generation",
				zap.Int("attempt", attempt), zap.Error(lastErr))
			if err := backoff(ctx, attempt); err != nil {
				return "", err
			}
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		text, retriable, err := g.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retriable {
			break
		}
	}
	return "", lastErr
}

// attempt performs one bounded request through the circuit breaker.
func (g *Generator) attempt(
	ctx context.Context, req openai.ChatCompletionRequest,
) (text string, retriable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.client.CreateChatCompletion(attemptCtx, req)
	})

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", retryableError(err), parseAPIError(err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", false, fmt.Errorf("empty completion response: %w", domain.ErrUpstreamUnavailable)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(g.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	return resp.Choices[0].Message.Content, false, nil
}

// backoff sleeps 250ms, 500ms, 1s, ... or returns early on context cancel.
func backoff(ctx context.Context, attempt int) error {
	delay := 250 * time.Millisecond << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryableError reports whether another attempt can succeed: timeouts,
// rate limiting, and server-side failures are retriable; client errors and
// an open breaker are not.
func retryableError(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	// Transport-level failures (connection refused, reset) are worth a retry.
	return true
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrUpstreamUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrUpstreamUnavailable

	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("llm circuit breaker open: %w", wrap)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("generation timed out: %w", wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractMessage(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("generation API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("generation request failed: %w", wrap)
}

// extractMessage pulls the nested error message from a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Error.Message
	}
	return ""
}
