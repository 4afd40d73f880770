// Package mocks provides hand-written test doubles for the interfaces used
// across the application.
//
// Each mock exposes function fields for per-test behavior and records its
// calls so tests can assert on them:
//
//	gen := &mocks.MockGenerator{
//	    FlashcardsFn: func(ctx context.Context, topic string, count int) ([]domain.Flashcard, error) {
//	        return mocks.Flashcards(7), nil
//	    },
//	}
//
// The store mocks keep their data in memory and are safe for concurrent use.
package mocks
