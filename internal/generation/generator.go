package generation

import (
	"context"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// Generator produces study material for a topic.
//
// On a nil error the returned slice is never empty: an empty result from
// the model is reported as ErrInvalidResponse.
type Generator interface {
	// Flashcards returns at most count cards about topic.
	Flashcards(ctx context.Context, topic string, count int) ([]domain.Flashcard, error)

	// Modules returns the ordered modules of a learning path about topic.
	Modules(ctx context.Context, topic string) ([]domain.Module, error)
}

// Prompt is a provider-neutral request for a single JSON document.
type Prompt struct {
	System string
	User   string
	// Schema describes the expected JSON output. Providers that support
	// structured output pass it along; all output is validated against it.
	Schema *Schema
}

// Completer sends a prompt to a language model and returns its raw text.
//
// Implementations map provider failures onto ErrTransientFailure,
// ErrContentBlocked and ErrInvalidResponse.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}
