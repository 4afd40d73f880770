package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/domain/analytics"
	"github.com/phrazzld/thinkforge-api/internal/events"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/redact"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// Dashboard summarizes a user's engagement.
type Dashboard struct {
	FlashcardCount  int                    `json:"flashcardCount"`
	TopicName       string                 `json:"topicName"`
	Streak          analytics.StreakResult `json:"streak"`
	SuccessRate     float64                `json:"successRate"`
	QuizAttempts    int                    `json:"quizAttempts"`
	PathsInProgress int                    `json:"pathsInProgress"`
	// Partial is set when part of the data could not be read and was
	// reported as empty.
	Partial bool `json:"partial,omitempty"`
}

// QuizRecordedPayload is the payload of an events.QuizRecorded event.
type QuizRecordedPayload struct {
	Accuracy float64   `json:"accuracy"`
	Date     time.Time `json:"date"`
}

// ProgressService computes dashboards and records quiz attempts.
type ProgressService struct {
	progress store.ProgressStore
	paths    store.PathStore
	emitter  events.EventEmitter
	loc      *time.Location
	cache    *summaryCache
	logger   *slog.Logger
	now      func() time.Time
}

// ProgressServiceOption customizes a ProgressService.
type ProgressServiceOption func(*ProgressService)

// WithClock replaces the service's clock.
func WithClock(now func() time.Time) ProgressServiceOption {
	return func(s *ProgressService) { s.now = now }
}

// NewProgressService creates a ProgressService. Streak days are counted in
// loc (UTC when nil) and dashboards are cached for cacheTTL.
func NewProgressService(
	progress store.ProgressStore,
	paths store.PathStore,
	emitter events.EventEmitter,
	loc *time.Location,
	cacheTTL time.Duration,
	logger *slog.Logger,
	opts ...ProgressServiceOption,
) (*ProgressService, error) {
	if progress == nil {
		return nil, fmt.Errorf("progress store cannot be nil")
	}
	if paths == nil {
		return nil, fmt.Errorf("path store cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &ProgressService{
		progress: progress,
		paths:    paths,
		emitter:  emitter,
		loc:      loc,
		logger:   logger.With(slog.String("component", "progress_service")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newSummaryCache(cacheTTL, s.loc, func() time.Time { return s.now() })
	return s, nil
}

// CacheInvalidator returns the handler that drops cached dashboards when
// activity events arrive. Register it with the event emitter.
func (s *ProgressService) CacheInvalidator() events.EventHandler {
	return s.cache
}

// Dashboard returns the user's engagement summary. Read failures never fail
// the call: the affected figures are reported as zero and Partial is set.
func (s *ProgressService) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	if userID == uuid.Nil {
		return Dashboard{}, domain.ErrNotAuthenticated
	}
	if cached, ok := s.cache.get(userID); ok {
		return cached, nil
	}
	gen := s.cache.generation(userID)

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	var d Dashboard

	record, err := s.progress.GetProgress(ctx, userID)
	switch {
	case err == nil:
		d.FlashcardCount = record.FlashcardCount
		d.TopicName = record.TopicName
		attempts := s.decodeAttempts(log, record)
		d.QuizAttempts = len(attempts)
		d.Streak = analytics.CurrentStreak(attempts, s.now(), s.loc)
		d.SuccessRate = analytics.SuccessRate(attempts)
	case errors.Is(err, store.ErrProgressNotFound):
		// New users have no record yet.
	default:
		log.Error("failed to read progress for dashboard", redact.Attr(err))
		d.Partial = true
	}

	paths, err := s.paths.ListPaths(ctx, userID)
	if err != nil {
		log.Error("failed to read learning paths for dashboard", redact.Attr(err))
		d.Partial = true
	} else {
		d.PathsInProgress = len(domain.FilterInProgress(paths))
	}

	if !d.Partial {
		s.cache.put(userID, gen, d)
	}
	return d, nil
}

// decodeAttempts decodes stored quiz scores. Undecodable data is logged and
// treated as no attempts.
func (s *ProgressService) decodeAttempts(log *slog.Logger, record *domain.ProgressRecord) []domain.QuizAttempt {
	attempts, err := analytics.DecodeQuizAttempts(record.QuizScores, s.loc)
	if err != nil {
		log.Warn("ignoring malformed quiz scores", redact.Attr(err))
		return nil
	}
	return attempts
}

// RecordQuizAttempt appends a completed quiz to the user's history. A zero
// date is stamped with the current time.
func (s *ProgressService) RecordQuizAttempt(ctx context.Context, userID uuid.UUID, attempt domain.QuizAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if userID == uuid.Nil {
		return domain.ErrNotAuthenticated
	}
	if attempt.Date.IsZero() {
		attempt.Date = s.now()
	}
	attempt.Date = attempt.Date.UTC()
	if err := attempt.Validate(); err != nil {
		return err
	}

	if err := s.progress.PutProgress(ctx, userID, domain.ProgressUpdate{AppendQuizAttempt: &attempt}); err != nil {
		log.Error("failed to record quiz attempt", redact.Attr(err))
		return storeFailure("record quiz attempt", err)
	}
	s.cache.invalidate(userID)
	log.Info("quiz attempt recorded", slog.Float64("accuracy", attempt.Accuracy))

	payload := QuizRecordedPayload{Accuracy: attempt.Accuracy, Date: attempt.Date}
	if err := events.Publish(ctx, s.emitter, events.QuizRecorded, userID, payload); err != nil {
		log.Warn("failed to publish quiz recorded event", redact.Attr(err))
	}
	return nil
}
