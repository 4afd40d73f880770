package domain

// MaxFlashcardCount bounds a single generation request.
const MaxFlashcardCount = 50

// Flashcard is a single generated study card. The faces hold display-ready
// HTML fragments. Flashcards live only in a session and are never persisted.
type Flashcard struct {
	ID        int    `json:"id"`
	FrontHTML string `json:"frontHTML"`
	BackHTML  string `json:"backHTML"`
}

// ValidateFlashcardCount checks a requested number of cards.
func ValidateFlashcardCount(count int) error {
	if count < 1 {
		return NewValidationError("count", "must be at least 1")
	}
	if count > MaxFlashcardCount {
		return NewValidationError("count", "must be at most 50")
	}
	return nil
}
