package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/domain/analytics"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// upsertProgressQuery merges a partial update into user_progress in one
// statement. NULL parameters leave the stored column untouched. A quiz
// attempt is appended with jsonb ||. Rows whose quiz_scores is still not an
// array at this point hold undecodable data and are replaced by the new
// single-element array.
const upsertProgressQuery = `
	INSERT INTO user_progress (user_id, flashcard_count, topic_name, quiz_scores, updated_at)
	VALUES ($1, COALESCE($2::integer, 0), COALESCE($3::text, ''), COALESCE($4::jsonb, '[]'::jsonb), $5)
	ON CONFLICT (user_id) DO UPDATE SET
		flashcard_count = COALESCE($2::integer, user_progress.flashcard_count),
		topic_name      = COALESCE($3::text, user_progress.topic_name),
		quiz_scores     = CASE
			WHEN $4::jsonb IS NULL THEN user_progress.quiz_scores
			WHEN jsonb_typeof(user_progress.quiz_scores) = 'array' THEN user_progress.quiz_scores || $4::jsonb
			ELSE $4::jsonb
		END,
		updated_at      = $5`

// legacyScoresQuery selects quiz history that was stored in a non-array form.
const legacyScoresQuery = `
	SELECT quiz_scores
	FROM user_progress
	WHERE user_id = $1 AND jsonb_typeof(quiz_scores) <> 'array'`

// normalizeScoresQuery rewrites quiz history only if it still holds the value
// that was read, so a concurrent writer is never overwritten.
const normalizeScoresQuery = `
	UPDATE user_progress
	SET quiz_scores = $2::jsonb
	WHERE user_id = $1 AND quiz_scores = $3::jsonb`

type progressRow struct {
	UserID         uuid.UUID `db:"user_id"`
	FlashcardCount int       `db:"flashcard_count"`
	TopicName      string    `db:"topic_name"`
	QuizScores     []byte    `db:"quiz_scores"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// PostgresProgressStore implements store.ProgressStore.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// NewPostgresProgressStore creates a progress store.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithTx implements store.ProgressStore.
func (s *PostgresProgressStore) WithTx(tx *sqlx.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger, now: s.now}
}

// GetProgress implements store.ProgressStore.
func (s *PostgresProgressStore) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row progressRow
	err := sqlx.GetContext(ctx, s.db, &row, `
		SELECT user_id, flashcard_count, topic_name, quiz_scores, updated_at
		FROM user_progress
		WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to load progress",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("progress", "get", "query failed", MapError(err))
	}

	return &domain.ProgressRecord{
		UserID:         row.UserID,
		FlashcardCount: row.FlashcardCount,
		TopicName:      row.TopicName,
		QuizScores:     json.RawMessage(row.QuizScores),
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// PutProgress implements store.ProgressStore.
func (s *PostgresProgressStore) PutProgress(ctx context.Context, userID uuid.UUID, update domain.ProgressUpdate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := update.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	args, err := progressArgs(update)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if update.AppendQuizAttempt != nil {
		if err := s.normalizeLegacyScores(ctx, userID); err != nil {
			log.Error("failed to normalize legacy quiz scores",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			return store.NewStoreError("progress", "put", "normalize failed", MapError(err))
		}
	}

	_, err = s.db.ExecContext(ctx, upsertProgressQuery,
		userID, args.flashcardCount, args.topicName, args.quizScores, s.now())
	if err != nil {
		log.Error("failed to write progress",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("progress", "put", "upsert failed", MapError(err))
	}

	log.Debug("progress updated", slog.String("user_id", userID.String()))
	return nil
}

// normalizeLegacyScores rewrites quiz history saved as a JSON string into the
// array form so the following append extends it. Undecodable history is left
// in place.
func (s *PostgresProgressStore) normalizeLegacyScores(ctx context.Context, userID uuid.UUID) error {
	var raw []byte
	err := sqlx.GetContext(ctx, s.db, &raw, legacyScoresQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	normalized, err := analytics.NormalizeQuizScores(raw)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("legacy quiz scores are undecodable and will be replaced",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	_, err = s.db.ExecContext(ctx, normalizeScoresQuery, userID, string(normalized), string(raw))
	return err
}

type progressParams struct {
	flashcardCount sql.NullInt64
	topicName      sql.NullString
	quizScores     sql.NullString
}

func progressArgs(update domain.ProgressUpdate) (progressParams, error) {
	var p progressParams
	if update.FlashcardCount != nil {
		p.flashcardCount = sql.NullInt64{Int64: int64(*update.FlashcardCount), Valid: true}
	}
	if update.TopicName != nil {
		p.topicName = sql.NullString{String: *update.TopicName, Valid: true}
	}
	if update.AppendQuizAttempt != nil {
		attempt := *update.AppendQuizAttempt
		attempt.Date = attempt.Date.UTC()
		encoded, err := json.Marshal([]domain.QuizAttempt{attempt})
		if err != nil {
			return p, fmt.Errorf("encode quiz attempt: %w", err)
		}
		p.quizScores = sql.NullString{String: string(encoded), Valid: true}
	}
	return p, nil
}
