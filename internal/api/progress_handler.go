package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/service"
)

// ProgressTracker is the progress functionality the endpoints need.
type ProgressTracker interface {
	Dashboard(ctx context.Context, userID uuid.UUID) (service.Dashboard, error)
	RecordQuizAttempt(ctx context.Context, userID uuid.UUID, attempt domain.QuizAttempt) error
}

// ProgressHandler serves the dashboard and quiz attempt endpoints.
type ProgressHandler struct {
	progress ProgressTracker
	logger   *slog.Logger
}

// NewProgressHandler creates a ProgressHandler. It panics on a nil service.
func NewProgressHandler(progress ProgressTracker, logger *slog.Logger) *ProgressHandler {
	if progress == nil {
		panic("api: ProgressHandler requires a progress service")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With(slog.String("component", "progress_handler")),
	}
}

// Dashboard handles GET /api/dashboard.
func (h *ProgressHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.progress.Dashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, d)
}

// RecordQuizAttempt handles POST /api/quiz-attempts.
func (h *ProgressHandler) RecordQuizAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req QuizAttemptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	attempt := domain.QuizAttempt{Accuracy: *req.Accuracy, Date: req.Date}
	if err := h.progress.RecordQuizAttempt(r.Context(), userID, attempt); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
