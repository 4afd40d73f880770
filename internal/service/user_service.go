package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
	"github.com/phrazzld/thinkforge-api/internal/redact"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// TxRunner runs fn inside a transaction.
type TxRunner func(ctx context.Context, fn store.TxFn) error

// DBTxRunner returns a TxRunner backed by db.
func DBTxRunner(db *sqlx.DB) TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}
}

// UserService registers and authenticates users.
type UserService struct {
	users    store.UserStore
	progress store.ProgressStore
	verifier auth.PasswordVerifier
	runTx    TxRunner
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	progress store.ProgressStore,
	verifier auth.PasswordVerifier,
	runTx TxRunner,
	logger *slog.Logger,
) (*UserService, error) {
	if users == nil || progress == nil {
		return nil, fmt.Errorf("user and progress stores are required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("password verifier cannot be nil")
	}
	if runTx == nil {
		return nil, fmt.Errorf("transaction runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		progress: progress,
		verifier: verifier,
		runTx:    runTx,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates a user together with an empty progress record.
// store.ErrEmailExists is returned when the email is taken.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	zero, empty := 0, ""
	err = s.runTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.progress.WithTx(tx).PutProgress(ctx, user.ID,
			domain.ProgressUpdate{FlashcardCount: &zero, TopicName: &empty})
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, err
		}
		log.Error("failed to register user", redact.Attr(err))
		return nil, storeFailure("register user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords both
// yield auth.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user", redact.Attr(err))
		return nil, storeFailure("look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, storeFailure("get user", err)
	}
	return user, nil
}
