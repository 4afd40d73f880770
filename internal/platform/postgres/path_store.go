package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

type pathRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	TopicName string    `db:"topic_name"`
	Modules   []byte    `db:"modules"`
	Progress  int       `db:"progress"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r pathRow) toDomain() (*domain.LearningPath, error) {
	var modules []domain.Module
	if err := json.Unmarshal(r.Modules, &modules); err != nil {
		return nil, fmt.Errorf("decode modules of path %s: %w", r.ID, err)
	}
	return &domain.LearningPath{
		ID:        r.ID,
		UserID:    r.UserID,
		TopicName: r.TopicName,
		Modules:   modules,
		Progress:  r.Progress,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// PostgresPathStore implements store.PathStore.
type PostgresPathStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.PathStore = (*PostgresPathStore)(nil)

// NewPostgresPathStore creates a learning path store.
func NewPostgresPathStore(db store.DBTX, logger *slog.Logger) *PostgresPathStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPathStore{
		db:     db,
		logger: logger.With(slog.String("component", "path_store")),
	}
}

// ListPaths implements store.PathStore.
func (s *PostgresPathStore) ListPaths(ctx context.Context, userID uuid.UUID) ([]*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []pathRow
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, user_id, topic_name, modules, progress, created_at, updated_at
		FROM learning_paths
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		log.Error("failed to list learning paths",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("learning_path", "list", "query failed", MapError(err))
	}

	paths := make([]*domain.LearningPath, 0, len(rows))
	for _, row := range rows {
		path, err := row.toDomain()
		if err != nil {
			log.Error("skipping unreadable learning path",
				slog.String("path_id", row.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CreatePath implements store.PathStore.
func (s *PostgresPathStore) CreatePath(
	ctx context.Context,
	userID uuid.UUID,
	topicName string,
	modules []domain.Module,
) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := domain.NewLearningPath(userID, topicName, modules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	encoded, err := json.Marshal(path.Modules)
	if err != nil {
		return nil, fmt.Errorf("%w: encode modules: %w", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO learning_paths (id, user_id, topic_name, modules, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7)`,
		path.ID, path.UserID, path.TopicName, string(encoded), path.Progress, path.CreatedAt, path.UpdatedAt)
	if err != nil {
		log.Error("failed to create learning path",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("learning_path", "create", "insert failed", MapError(err))
	}

	log.Info("learning path created",
		slog.String("path_id", path.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("modules", len(path.Modules)))
	return path, nil
}

// DeletePath implements store.PathStore.
func (s *PostgresPathStore) DeletePath(ctx context.Context, userID, pathID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM learning_paths WHERE id = $1 AND user_id = $2`, pathID, userID)
	if err != nil {
		log.Error("failed to delete learning path",
			slog.String("path_id", pathID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("learning_path", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrPathNotFound); err != nil {
		return err
	}

	log.Info("learning path deleted",
		slog.String("path_id", pathID.String()),
		slog.String("user_id", userID.String()))
	return nil
}
