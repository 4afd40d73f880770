package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/events"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/redact"
)

// ProgressWriter is the part of the progress store a session needs.
type ProgressWriter interface {
	PutProgress(ctx context.Context, userID uuid.UUID, update domain.ProgressUpdate) error
}

// GeneratedPayload is the payload of an events.FlashcardsGenerated event.
type GeneratedPayload struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Manager owns one flashcard session per user.
type Manager struct {
	generator generation.Generator
	progress  ProgressWriter
	emitter   events.EventEmitter
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager. emitter may be nil.
func NewManager(
	generator generation.Generator,
	progress ProgressWriter,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Manager {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if progress == nil {
		panic("progress writer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		generator: generator,
		progress:  progress,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "flashcard_session")),
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Generate replaces the user's deck with freshly generated cards and records
// the deck size in the user's progress.
//
// Input is validated before the generator is called. On generator failure
// the session is left as it was. If the progress write fails the new deck is
// kept and an ErrStore error is returned with the view.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID, topic string, count int) (View, error) {
	log := logger.FromContextOrDefault(ctx, m.logger).With(slog.String("user_id", userID.String()))

	if userID == uuid.Nil {
		return View{}, domain.ErrNotAuthenticated
	}
	topic, err := domain.NormalizeTopic(topic)
	if err != nil {
		return View{}, err
	}
	if err := domain.ValidateFlashcardCount(count); err != nil {
		return View{}, err
	}

	// The generator runs without any session lock held; concurrent calls for
	// the same user resolve last-writer-wins.
	cards, err := m.generator.Flashcards(ctx, topic, count)
	if err != nil {
		log.Warn("flashcard generation failed", redact.Attr(err))
		return m.Current(userID), fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if len(cards) == 0 {
		log.Warn("generator returned no flashcards")
		return m.Current(userID), fmt.Errorf("%w: no flashcards returned", domain.ErrGeneration)
	}

	view := m.Get(userID).Replace(topic, cards, m.now())
	log.Info("flashcards generated",
		slog.Int("requested", count),
		slog.Int("returned", len(cards)))

	// The persisted count is the number of cards actually returned.
	if err := m.progress.PutProgress(ctx, userID, domain.FlashcardsGenerated(len(cards), topic)); err != nil {
		log.Error("failed to record flashcard progress", redact.Attr(err))
		return view, fmt.Errorf("%w: record flashcard count: %w", domain.ErrStore, err)
	}

	payload := GeneratedPayload{Topic: topic, Count: len(cards)}
	if err := events.Publish(ctx, m.emitter, events.FlashcardsGenerated, userID, payload); err != nil {
		log.Warn("failed to publish flashcards generated event", redact.Attr(err))
	}
	return view, nil
}

// Flip toggles the current card of the user's session.
func (m *Manager) Flip(userID uuid.UUID) View {
	return m.Get(userID).Flip(m.now())
}

// Next advances the user's session.
func (m *Manager) Next(userID uuid.UUID) View {
	return m.Get(userID).Next(m.now())
}

// Prev steps the user's session back.
func (m *Manager) Prev(userID uuid.UUID) View {
	return m.Get(userID).Prev(m.now())
}

// Current returns the user's session state without touching it.
func (m *Manager) Current(userID uuid.UUID) View {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return View{}
	}
	return s.View()
}

// Get returns the user's session, creating an empty one if needed.
func (m *Manager) Get(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{lastActive: m.now()}
		m.sessions[userID] = s
	}
	return s
}

// EvictIdle drops sessions untouched for longer than idle and returns how
// many were removed.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
