package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// PathStore persists learning paths.
type PathStore interface {
	// ListPaths returns every path of the user, oldest first.
	ListPaths(ctx context.Context, userID uuid.UUID) ([]*domain.LearningPath, error)

	// CreatePath stores a new path with progress 0 and returns it.
	CreatePath(ctx context.Context, userID uuid.UUID, topicName string, modules []domain.Module) (*domain.LearningPath, error)

	// DeletePath hard-deletes the path. Returns ErrPathNotFound if no path
	// with that ID is owned by userID.
	DeletePath(ctx context.Context, userID, pathID uuid.UUID) error
}
