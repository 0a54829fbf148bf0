// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/metrics"
	"eam-assistant/internal/prompt"
)

// Completer sends a rendered prompt to a model and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, p *prompt.Rendered, opts ...CallOption) (string, error)
}

// Unavailable stands in for a model that could not be configured. Every call
// returns Err, or the missing LLM_NAME error when Err is nil.
type Unavailable struct {
	Err error
}

func (u Unavailable) Complete(context.Context, *prompt.Rendered, ...CallOption) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	return "", Validate("")
}

type Options struct {
	Name        string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	// BaseBackoff is the first retry delay; it doubles per attempt.
	BaseBackoff time.Duration
}

type callOptions struct {
	temperature *float64
}

type CallOption func(*callOptions)

// WithTemperature overrides the configured sampling temperature for one call.
func WithTemperature(t float64) CallOption {
	return func(o *callOptions) { o.temperature = &t }
}

// Client wraps a langchaingo model with retries and metrics.
type Client struct {
	model  llms.Model
	opts   Options
	logger logger.Logger
}

func NewClient(model llms.Model, opts Options, log logger.Logger) *Client {
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 100 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		model: model,
		opts:  opts,
		logger: log.WithFields(map[string]interface{}{
			"model": opts.Name,
		}),
	}
}

func (c *Client) Name() string { return c.opts.Name }

func (c *Client) Complete(ctx context.Context, p *prompt.Rendered, opts ...CallOption) (string, error) {
	co := callOptions{}
	for _, opt := range opts {
		opt(&co)
	}

	temperature := c.opts.Temperature
	if co.temperature != nil {
		temperature = *co.temperature
	}
	callOpts := []llms.CallOption{llms.WithTemperature(temperature)}
	if c.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.opts.MaxTokens))
	}

	messages := make([]llms.MessageContent, 0, 2)
	if p.System != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, p.System))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, p.Human))

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.opts.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				c.observe("timeout", start)
				return "", apperrors.NewLLMTimeoutError()
			}
		}

		resp, err := c.model.GenerateContent(ctx, messages, callOpts...)
		if err == nil {
			if len(resp.Choices) == 0 {
				c.observe("empty", start)
				return "", apperrors.NewLLMOutputInvalidError("model returned no choices")
			}
			c.observe("success", start)
			return strings.TrimSpace(resp.Choices[0].Content), nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("LLM call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	if errors.Is(lastErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.observe("timeout", start)
		return "", apperrors.NewLLMTimeoutError()
	}
	c.observe("error", start)
	return "", apperrors.NewLLMCallFailedError(lastErr)
}

func (c *Client) observe(status string, start time.Time) {
	metrics.LLMCallDuration.WithLabelValues(c.opts.Name, status).Observe(time.Since(start).Seconds())
}
