// Package anthropic adapts the Anthropic Messages API to
// generation.Completer.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5"

// Completer implements generation.Completer with the Anthropic API.
type Completer struct {
	client      *sdk.Client
	model       string
	temperature float32
	maxTokens   int64
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// New creates an Anthropic completer. The SDK's own retries are disabled;
// generation.RetryingCompleter owns retry policy.
func New(cfg config.LLMConfig, l *slog.Logger, opts ...option.RequestOption) (*Completer, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", generation.ErrInvalidConfig)
	}
	if l == nil {
		l = slog.Default()
	}

	all := append([]option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := sdk.NewClient(all...)

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}
	maxTokens := int64(cfg.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Completer{
		client:      &client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		logger:      l.With("component", "anthropic_completer"),
	}, nil
}

// Model implements generation.Completer.
func (c *Completer) Model() string {
	return c.model
}

// Complete implements generation.Completer.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{{
			Role:    sdk.MessageParamRoleUser,
			Content: []sdk.ContentBlockParamUnion{sdk.NewTextBlock(prompt.User)},
		}},
		Temperature: sdk.Float(float64(c.temperature)),
	}
	if prompt.System != "" {
		params.System = []sdk.TextBlockParam{{Text: prompt.System}}
	}

	log.DebugContext(ctx, "calling Anthropic API",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt.User)))

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}

	if msg.StopReason == "refusal" {
		return "", fmt.Errorf("%w: model refused", generation.ErrContentBlocked)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text content in response", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests, apiErr.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: anthropic status %d: %v", generation.ErrTransientFailure, apiErr.StatusCode, err)
		default:
			return fmt.Errorf("%w: anthropic status %d: %v", generation.ErrGenerationFailed, apiErr.StatusCode, err)
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
