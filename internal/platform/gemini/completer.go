package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/phrazzld/thinkforge-api/internal/config"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Completer implements generation.Completer with the Gemini API.
type Completer struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// Option customises a Completer.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

// New creates a Gemini completer from configuration.
func New(ctx context.Context, cfg config.LLMConfig, l *slog.Logger, opts ...Option) (*Completer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if l == nil {
		l = slog.Default()
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	model := cfg.ModelName
	if model == "" {
		model = DefaultModel
	}

	return &Completer{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxOutputTokens),
		logger:      l.With("component", "gemini_completer"),
	}, nil
}

// Model implements generation.Completer.
func (c *Completer) Model() string {
	return c.model
}

// Complete implements generation.Completer.
func (c *Completer) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  c.maxTokens,
		ResponseMIMEType: "application/json",
	}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	if prompt.Schema != nil {
		cfg.ResponseSchema = buildSchema(prompt.Schema.Definition)
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt.User}}}}

	log.DebugContext(ctx, "calling Gemini API",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt.User)))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", mapError(err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return text, nil
}

// mapError classifies Gemini API failures.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := 0
	var apiErrPtr *genai.APIError
	var apiErr genai.APIError
	switch {
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	case errors.As(err, &apiErr):
		code = apiErr.Code
	}

	switch {
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: gemini status %d: %v", generation.ErrTransientFailure, code, err)
	case code != 0:
		return fmt.Errorf("%w: gemini status %d: %v", generation.ErrGenerationFailed, code, err)
	default:
		// network level failure
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
}
