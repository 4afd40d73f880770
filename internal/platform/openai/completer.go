// Package openai adapts the OpenAI chat completions API, and compatible
// endpoints selected through a base URL, to generation.Completer.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Completer implements generation.Completer with the OpenAI API.
type Completer struct {
	client      *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// New creates an OpenAI completer from configuration.
func New(cfg config.LLMConfig, l *slog.Logger) (*Completer, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if l == nil {
		l = slog.Default()
	}

	clientCfg := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}

	return &Completer{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		logger:      l.With("component", "openai_completer"),
	}, nil
}

// Model implements generation.Completer.
func (c *Completer) Model() string {
	return c.model
}

// Complete implements generation.Completer. JSON mode is requested; the
// schema itself is enforced by the caller.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var messages []goopenai.ChatCompletionMessage
	if prompt.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: prompt.User,
	})

	req := goopenai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            messages,
		Temperature:         c.temperature,
		MaxCompletionTokens: c.maxTokens,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	log.DebugContext(ctx, "calling OpenAI API",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt.User)))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: response filtered", generation.ErrContentBlocked)
	}
	if choice.Message.Content == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return choice.Message.Content, nil
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests, apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: openai status %d: %v", generation.ErrTransientFailure, apiErr.HTTPStatusCode, err)
		default:
			return fmt.Errorf("%w: openai status %d: %v", generation.ErrGenerationFailed, apiErr.HTTPStatusCode, err)
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode < http.StatusInternalServerError && reqErr.HTTPStatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: openai status %d: %v", generation.ErrGenerationFailed, reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
