package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/service"
)

// LearningPaths is the learning-path functionality the endpoints need.
type LearningPaths interface {
	Create(ctx context.Context, userID uuid.UUID, topic string) (*domain.LearningPath, service.PathListing, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.LearningPath, error)
	Delete(ctx context.Context, userID, pathID uuid.UUID) (service.PathListing, error)
}

// PathHandler serves the learning path endpoints.
type PathHandler struct {
	paths  LearningPaths
	logger *slog.Logger
}

// NewPathHandler creates a PathHandler. It panics on a nil service.
func NewPathHandler(paths LearningPaths, logger *slog.Logger) *PathHandler {
	if paths == nil {
		panic("api: PathHandler requires a path service")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PathHandler{
		paths:  paths,
		logger: logger.With(slog.String("component", "path_handler")),
	}
}

// List handles GET /api/paths and returns the paths still in progress.
func (h *PathHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	paths, err := h.paths.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load learning paths")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listingResponse(service.PathListing{Paths: paths}))
}

// Create handles POST /api/paths.
func (h *PathHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req CreatePathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	path, listing, err := h.paths.Create(r.Context(), userID, req.Topic)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if listing.Stale {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("returning stale path listing after create",
			slog.String("path_id", path.ID.String()))
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CreatePathResponse{
		Path:             path,
		PathListResponse: listingResponse(listing),
	})
}

// Delete handles DELETE /api/paths/{id}.
func (h *PathHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	listing, err := h.paths.Delete(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listingResponse(listing))
}
