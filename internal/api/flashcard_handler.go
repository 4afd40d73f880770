package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/session"
)

// FlashcardSessions is the flashcard session functionality the endpoints need.
type FlashcardSessions interface {
	Generate(ctx context.Context, userID uuid.UUID, topic string, count int) (session.View, error)
	Flip(userID uuid.UUID) session.View
	Next(userID uuid.UUID) session.View
	Prev(userID uuid.UUID) session.View
	Current(userID uuid.UUID) session.View
}

// FlashcardHandler serves the flashcard session endpoints.
type FlashcardHandler struct {
	sessions FlashcardSessions
	logger   *slog.Logger
}

// NewFlashcardHandler creates a FlashcardHandler. It panics on a nil manager.
func NewFlashcardHandler(sessions FlashcardSessions, logger *slog.Logger) *FlashcardHandler {
	if sessions == nil {
		panic("api: FlashcardHandler requires a session manager")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "flashcard_handler")),
	}
}

// Generate handles POST /api/flashcards/generate.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req GenerateFlashcardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.sessions.Generate(r.Context(), userID, req.Topic, req.Count)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("flashcard generation rejected",
			slog.String("topic", req.Topic),
			slog.Int("count", req.Count),
			slog.Int("session_total", view.Total))
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Session handles GET /api/flashcards/session.
func (h *FlashcardHandler) Session(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.sessions.Current)
}

// Flip handles POST /api/flashcards/session/flip.
func (h *FlashcardHandler) Flip(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.sessions.Flip)
}

// Next handles POST /api/flashcards/session/next.
func (h *FlashcardHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.sessions.Next)
}

// Prev handles POST /api/flashcards/session/prev.
func (h *FlashcardHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.sessions.Prev)
}

func (h *FlashcardHandler) respond(w http.ResponseWriter, r *http.Request, step func(uuid.UUID) session.View) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, step(userID))
}
