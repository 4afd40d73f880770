package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/generation"
)

// MockGenerator implements generation.Generator.
type MockGenerator struct {
	FlashcardsFn func(ctx context.Context, topic string, count int) ([]domain.Flashcard, error)
	ModulesFn    func(ctx context.Context, topic string) ([]domain.Module, error)

	// Returned when the matching Fn is nil.
	Cards      []domain.Flashcard
	ModuleList []domain.Module
	Err        error

	mu              sync.Mutex
	FlashcardsCalls []FlashcardsCall
	ModulesCalls    []string
}

// FlashcardsCall records one Flashcards invocation.
type FlashcardsCall struct {
	Topic string
	Count int
}

var _ generation.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) Flashcards(ctx context.Context, topic string, count int) ([]domain.Flashcard, error) {
	m.mu.Lock()
	m.FlashcardsCalls = append(m.FlashcardsCalls, FlashcardsCall{Topic: topic, Count: count})
	m.mu.Unlock()

	if m.FlashcardsFn != nil {
		return m.FlashcardsFn(ctx, topic, count)
	}
	return m.Cards, m.Err
}

func (m *MockGenerator) Modules(ctx context.Context, topic string) ([]domain.Module, error) {
	m.mu.Lock()
	m.ModulesCalls = append(m.ModulesCalls, topic)
	m.mu.Unlock()

	if m.ModulesFn != nil {
		return m.ModulesFn(ctx, topic)
	}
	return m.ModuleList, m.Err
}

// FlashcardsCallCount returns how many times Flashcards was called.
func (m *MockGenerator) FlashcardsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FlashcardsCalls)
}

// ModulesCallCount returns how many times Modules was called.
func (m *MockGenerator) ModulesCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ModulesCalls)
}

// Flashcards builds n numbered cards.
func Flashcards(n int) []domain.Flashcard {
	cards := make([]domain.Flashcard, n)
	for i := range cards {
		cards[i] = domain.Flashcard{
			ID:        i + 1,
			FrontHTML: fmt.Sprintf("<p>Question %d</p>", i+1),
			BackHTML:  fmt.Sprintf("<p>Answer %d</p>", i+1),
		}
	}
	return cards
}

// Modules builds n modules titled "Module 1".."Module n".
func Modules(n int) []domain.Module {
	modules := make([]domain.Module, n)
	for i := range modules {
		raw, _ := json.Marshal(map[string]string{"title": fmt.Sprintf("Module %d", i+1)})
		modules[i] = domain.Module(raw)
	}
	return modules
}
