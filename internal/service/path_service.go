package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/events"
	"github.com/phrazzld/thinkforge-api/internal/generation"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/redact"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// PathListing is the in-progress view returned after a path mutation.
// Stale is set when the mutation succeeded but the view could not be
// re-read; Paths is then empty.
type PathListing struct {
	Paths []*domain.LearningPath `json:"paths"`
	Stale bool                   `json:"stale,omitempty"`
}

// PathEventPayload is the payload of path activity events.
type PathEventPayload struct {
	PathID uuid.UUID `json:"path_id"`
	Topic  string    `json:"topic,omitempty"`
}

// PathService manages the lifecycle of learning paths.
type PathService struct {
	paths     store.PathStore
	generator generation.Generator
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewPathService creates a PathService. emitter may be nil.
func NewPathService(
	paths store.PathStore,
	generator generation.Generator,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*PathService, error) {
	if paths == nil {
		return nil, fmt.Errorf("path store cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PathService{
		paths:     paths,
		generator: generator,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "path_service")),
	}, nil
}

// Create generates a learning path for topic, stores it with progress 0 and
// returns the created path with a fresh in-progress listing.
//
// Nothing is stored when generation fails or yields no modules. Calling
// Create twice with the same topic stores two distinct paths.
func (s *PathService) Create(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.LearningPath, PathListing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if userID == uuid.Nil {
		return nil, PathListing{}, domain.ErrNotAuthenticated
	}
	topic, err := domain.NormalizeTopic(topic)
	if err != nil {
		return nil, PathListing{}, err
	}

	modules, err := s.generator.Modules(ctx, topic)
	if err != nil {
		log.Warn("learning path generation failed", redact.Attr(err))
		return nil, PathListing{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if len(modules) == 0 {
		log.Warn("generator returned no modules")
		return nil, PathListing{}, fmt.Errorf("%w: no modules returned", domain.ErrGeneration)
	}

	path, err := s.paths.CreatePath(ctx, userID, topic, modules)
	if err != nil {
		log.Error("failed to store learning path", redact.Attr(err))
		return nil, PathListing{}, storeFailure("create learning path", err)
	}
	log.Info("learning path created",
		slog.String("path_id", path.ID.String()),
		slog.Int("modules", len(path.Modules)))

	s.publish(ctx, events.PathCreated, userID, PathEventPayload{PathID: path.ID, Topic: topic})
	return path, s.refresh(ctx, userID), nil
}

// List returns the user's paths with progress below 100 in store order.
func (s *PathService) List(ctx context.Context, userID uuid.UUID) ([]*domain.LearningPath, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrNotAuthenticated
	}

	paths, err := s.paths.ListPaths(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list learning paths",
			slog.String("user_id", userID.String()),
			redact.Attr(err))
		return nil, storeFailure("list learning paths", err)
	}
	return domain.FilterInProgress(paths), nil
}

// Delete hard-deletes one of the user's paths and returns the refreshed
// listing. On failure no listing is returned.
func (s *PathService) Delete(ctx context.Context, userID, pathID uuid.UUID) (PathListing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("path_id", pathID.String()))

	if userID == uuid.Nil {
		return PathListing{}, domain.ErrNotAuthenticated
	}

	if err := s.paths.DeletePath(ctx, userID, pathID); err != nil {
		log.Warn("failed to delete learning path", redact.Attr(err))
		return PathListing{}, pathFailure("delete learning path", err)
	}
	log.Info("learning path deleted")

	s.publish(ctx, events.PathDeleted, userID, PathEventPayload{PathID: pathID})
	return s.refresh(ctx, userID), nil
}

// refresh re-reads the listing after a successful mutation. A read failure
// does not undo the mutation; the listing is marked stale instead.
func (s *PathService) refresh(ctx context.Context, userID uuid.UUID) PathListing {
	paths, err := s.List(ctx, userID)
	if err != nil {
		return PathListing{Paths: []*domain.LearningPath{}, Stale: true}
	}
	return PathListing{Paths: paths}
}

func (s *PathService) publish(ctx context.Context, t events.ActivityType, userID uuid.UUID, payload any) {
	if err := events.Publish(ctx, s.emitter, t, userID, payload); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish activity event",
			slog.String("event_type", string(t)),
			redact.Attr(err))
	}
}
