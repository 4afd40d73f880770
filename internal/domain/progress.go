package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuizAttempt is one completed quiz. Attempts are append-only.
type QuizAttempt struct {
	Date     time.Time `json:"date"`
	Accuracy float64   `json:"accuracy"`
}

// Validate checks the accuracy range and date.
func (a QuizAttempt) Validate() error {
	if a.Accuracy < 0 || a.Accuracy > 100 {
		return NewValidationError("accuracy", "must be between 0 and 100")
	}
	if a.Date.IsZero() {
		return NewValidationError("date", "must be set")
	}
	return nil
}

// ProgressRecord is the per-user engagement aggregate.
//
// QuizScores is kept in its stored form; the analytics package decodes it
// tolerantly since older rows may hold a JSON string instead of an array.
type ProgressRecord struct {
	UserID         uuid.UUID       `json:"user_id"`
	FlashcardCount int             `json:"flashcard_count"`
	TopicName      string          `json:"topic_name"`
	QuizScores     json.RawMessage `json:"quiz_scores"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProgressUpdate is a partial update of a ProgressRecord. Nil fields are left
// untouched by the store; AppendQuizAttempt is appended to QuizScores.
type ProgressUpdate struct {
	FlashcardCount    *int
	TopicName         *string
	AppendQuizAttempt *QuizAttempt
}

// IsEmpty reports whether the update changes nothing.
func (u ProgressUpdate) IsEmpty() bool {
	return u.FlashcardCount == nil && u.TopicName == nil && u.AppendQuizAttempt == nil
}

// Validate checks every field present in the update.
func (u ProgressUpdate) Validate() error {
	if u.IsEmpty() {
		return NewValidationError("", "progress update has no fields")
	}
	if u.FlashcardCount != nil && *u.FlashcardCount < 0 {
		return NewValidationError("flashcard_count", "must not be negative")
	}
	if u.AppendQuizAttempt != nil {
		return u.AppendQuizAttempt.Validate()
	}
	return nil
}

// FlashcardsGenerated builds the update issued after a successful generation.
func FlashcardsGenerated(count int, topic string) ProgressUpdate {
	return ProgressUpdate{FlashcardCount: &count, TopicName: &topic}
}
