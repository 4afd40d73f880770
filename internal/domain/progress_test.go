package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTopic(t *testing.T) {
	t.Parallel()

	got, err := NormalizeTopic("  linear algebra \n")
	assert.NoError(t, err)
	assert.Equal(t, "linear algebra", got)

	_, err = NormalizeTopic(" \t ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NormalizeTopic(strings.Repeat("é", MaxTopicLength+1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NormalizeTopic(strings.Repeat("é", MaxTopicLength))
	assert.NoError(t, err)
}

func TestValidateFlashcardCount(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidateFlashcardCount(0), ErrValidation)
	assert.ErrorIs(t, ValidateFlashcardCount(-3), ErrValidation)
	assert.ErrorIs(t, ValidateFlashcardCount(MaxFlashcardCount+1), ErrValidation)
	assert.NoError(t, ValidateFlashcardCount(1))
	assert.NoError(t, ValidateFlashcardCount(MaxFlashcardCount))
}

func TestProgressUpdateValidate(t *testing.T) {
	t.Parallel()

	neg := -1
	zero := 0
	topic := "Go"

	tests := []struct {
		name    string
		update  ProgressUpdate
		wantErr bool
	}{
		{"empty", ProgressUpdate{}, true},
		{"negative count", ProgressUpdate{FlashcardCount: &neg}, true},
		{"zero count", ProgressUpdate{FlashcardCount: &zero}, false},
		{"generated", FlashcardsGenerated(5, topic), false},
		{"quiz in range", ProgressUpdate{AppendQuizAttempt: &QuizAttempt{Date: time.Now(), Accuracy: 80}}, false},
		{"quiz over 100", ProgressUpdate{AppendQuizAttempt: &QuizAttempt{Date: time.Now(), Accuracy: 100.5}}, true},
		{"quiz no date", ProgressUpdate{AppendQuizAttempt: &QuizAttempt{Accuracy: 50}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewValidationError("topic", "must not be empty")
	assert.Equal(t, "validation failed: topic: must not be empty", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrStore)
}
