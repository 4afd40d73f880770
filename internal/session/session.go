package session

import (
	"sync"
	"time"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// View is a read-only snapshot of a session.
type View struct {
	Topic    string            `json:"topic"`
	Total    int               `json:"total"`
	Position int               `json:"position"`
	Flipped  bool              `json:"flipped"`
	Card     *domain.Flashcard `json:"card,omitempty"`
}

// Session is a flashcard deck with a cursor and a flip flag.
// The zero value is an empty session at position 0, unflipped.
type Session struct {
	mu         sync.Mutex
	topic      string
	cards      []domain.Flashcard
	position   int
	flipped    bool
	lastActive time.Time
}

// Replace swaps in a freshly generated deck and resets the cursor.
func (s *Session) Replace(topic string, cards []domain.Flashcard, now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topic = topic
	s.cards = append([]domain.Flashcard(nil), cards...)
	s.position = 0
	s.flipped = false
	s.lastActive = now
	return s.viewLocked()
}

// Flip toggles the current card's face. It is a no-op on an empty deck.
func (s *Session) Flip(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) > 0 {
		s.flipped = !s.flipped
	}
	s.lastActive = now
	return s.viewLocked()
}

// Next advances to the following card unless the cursor is on the last one.
func (s *Session) Next(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.position < len(s.cards)-1 {
		s.position++
		s.flipped = false
	}
	s.lastActive = now
	return s.viewLocked()
}

// Prev steps back unless the cursor is on the first card.
func (s *Session) Prev(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.position > 0 {
		s.position--
		s.flipped = false
	}
	s.lastActive = now
	return s.viewLocked()
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// LastActive reports when the session was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) viewLocked() View {
	v := View{
		Topic:    s.topic,
		Total:    len(s.cards),
		Position: s.position,
		Flipped:  s.flipped,
	}
	if len(s.cards) > 0 {
		card := s.cards[s.position]
		v.Card = &card
	}
	return v
}
