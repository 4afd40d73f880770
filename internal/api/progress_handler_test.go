package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/service"
)

func TestProgressHandler_DashboardNewUser(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	w := a.do(t, http.MethodGet, "/api/dashboard", uuid.New(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.Dashboard{}, decodeBody[service.Dashboard](t, w))

	w = a.do(t, http.MethodGet, "/api/dashboard", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProgressHandler_QuizAttemptsFeedDashboard(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	userID := uuid.New()
	a.paths.Seed(userID, "Go", 40)

	// Warm the dashboard cache so the writes below must invalidate it.
	w := a.do(t, http.MethodGet, "/api/dashboard", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	today := time.Now().UTC()
	for _, attempt := range []map[string]any{
		{"accuracy": 80, "date": today.Format(time.RFC3339)},
		{"accuracy": 60, "date": today.AddDate(0, 0, -1).Format(time.RFC3339)},
		{"accuracy": 100},
	} {
		w := a.do(t, http.MethodPost, "/api/quiz-attempts", userID, attempt)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/flashcards/generate", userID,
		GenerateFlashcardsRequest{Topic: "Go", Count: 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/dashboard", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decodeBody[service.Dashboard](t, w)
	assert.Equal(t, 5, d.FlashcardCount)
	assert.Equal(t, "Go", d.TopicName)
	assert.Equal(t, 3, d.QuizAttempts)
	assert.Equal(t, 80.0, d.SuccessRate)
	assert.Equal(t, 2, d.Streak.Days)
	assert.Equal(t, 1, d.PathsInProgress)
}

func TestProgressHandler_RecordQuizAttemptErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		putErr     bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing accuracy",
			body:       `{"date":"2024-01-10T00:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid accuracy: required field",
		},
		{
			name:       "accuracy out of range",
			body:       `{"accuracy":120}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid accuracy: must be between 0 and 100",
		},
		{
			name:       "store failure",
			body:       `{"accuracy":50}`,
			putErr:     true,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to save or load data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newTestAPI(t)
			if tt.putErr {
				a.progress.PutErr = errConnReset
			}
			w := a.do(t, http.MethodPost, "/api/quiz-attempts", uuid.New(), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeBody[shared.ErrorResponse](t, w).Error)
		})
	}
}
