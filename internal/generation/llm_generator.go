package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
)

type flashcardResponse struct {
	Cards []struct {
		FrontHTML string `json:"frontHTML"`
		BackHTML  string `json:"backHTML"`
	} `json:"cards"`
}

type moduleResponse struct {
	Modules []json.RawMessage `json:"modules"`
}

// LLMGenerator implements Generator on top of a Completer.
type LLMGenerator struct {
	completer Completer
	templates *Templates
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Generator = (*LLMGenerator)(nil)

// NewLLMGenerator creates a generator. A zero timeout disables the
// per-call deadline.
func NewLLMGenerator(c Completer, templates *Templates, timeout time.Duration, l *slog.Logger) (*LLMGenerator, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	if templates == nil {
		return nil, fmt.Errorf("%w: templates cannot be nil", ErrInvalidConfig)
	}
	if l == nil {
		l = slog.Default()
	}
	return &LLMGenerator{
		completer: c,
		templates: templates,
		timeout:   timeout,
		logger:    l.With("component", "llm_generator"),
	}, nil
}

// Flashcards implements Generator. Cards are numbered 1..n in the order the
// model returned them, and the result is truncated to count.
func (g *LLMGenerator) Flashcards(ctx context.Context, topic string, count int) ([]domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	topic = strings.TrimSpace(topic)
	if topic == "" || count < 1 {
		return nil, fmt.Errorf("%w: topic and a positive count are required", ErrGenerationFailed)
	}

	prompt, err := g.templates.flashcardPrompt(topic, count)
	if err != nil {
		return nil, err
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp flashcardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	cards := make([]domain.Flashcard, 0, min(len(resp.Cards), count))
	for _, c := range resp.Cards {
		if len(cards) == count {
			break
		}
		cards = append(cards, domain.Flashcard{
			ID:        len(cards) + 1,
			FrontHTML: c.FrontHTML,
			BackHTML:  c.BackHTML,
		})
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in response", ErrInvalidResponse)
	}

	log.InfoContext(ctx, "generated flashcards",
		slog.Int("requested", count),
		slog.Int("returned", len(resp.Cards)),
		slog.Int("kept", len(cards)),
		slog.String("model", g.completer.Model()))
	return cards, nil
}

// Modules implements Generator.
func (g *LLMGenerator) Modules(ctx context.Context, topic string) ([]domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrGenerationFailed)
	}

	prompt, err := g.templates.pathPrompt(topic)
	if err != nil {
		return nil, err
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp moduleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Modules) == 0 {
		return nil, fmt.Errorf("%w: no modules in response", ErrInvalidResponse)
	}

	modules := make([]domain.Module, len(resp.Modules))
	for i, m := range resp.Modules {
		modules[i] = domain.Module(m)
	}

	log.InfoContext(ctx, "generated learning path modules",
		slog.Int("modules", len(modules)),
		slog.String("model", g.completer.Model()))
	return modules, nil
}

// complete runs the prompt and returns schema-valid JSON.
func (g *LLMGenerator) complete(ctx context.Context, prompt Prompt) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw := []byte(stripCodeFence(text))
	if prompt.Schema != nil {
		if err := prompt.Schema.Validate(raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
