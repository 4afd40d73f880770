package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/mocks"
	"github.com/phrazzld/thinkforge-api/internal/service/auth"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// inlineTx runs fn without a real transaction; the mocks ignore tx.
func inlineTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, (*sqlx.Tx)(nil))
}

func newTestUserService(t *testing.T, users *mocks.MockUserStore, progress *mocks.MockProgressStore) *UserService {
	t.Helper()

	verifier := &mocks.MockPasswordVerifier{
		CompareFn: func(hashed, password string) error {
			if hashed != mocks.HashFor(password) {
				return errors.New("mismatch")
			}
			return nil
		},
	}
	svc, err := NewUserService(users, progress, verifier, inlineTx, nil)
	require.NoError(t, err)
	return svc
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	progress := mocks.NewMockProgressStore()
	svc := newTestUserService(t, users, progress)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Ada@Example.com ", "analytical engine")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.Password)

	count, ok := progress.FlashcardCount(user.ID)
	assert.True(t, ok, "registration creates an empty progress record")
	assert.Zero(t, count)

	_, err = svc.Register(ctx, "ada@example.com", "another long password")
	assert.ErrorIs(t, err, store.ErrEmailExists)

	_, err = svc.Register(ctx, "not-an-email", "analytical engine")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, "short@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, users.Len())
}

func TestUserService_RegisterProgressFailure(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	progress := mocks.NewMockProgressStore()
	progress.PutErr = errors.New("connection reset")
	svc := newTestUserService(t, users, progress)

	_, err := svc.Register(context.Background(), "ada@example.com", "analytical engine")
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	svc := newTestUserService(t, users, mocks.NewMockProgressStore())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ada@example.com", "analytical engine")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ada@example.com", "analytical engine", nil},
		{"case-insensitive email", "ADA@example.com", "analytical engine", nil},
		{"wrong password", "ada@example.com", "difference engine", auth.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "analytical engine", auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
		})
	}

	users.GetByEmailFn = func(context.Context, string) (*domain.User, error) {
		return nil, errors.New("timeout")
	}
	_, err = svc.Authenticate(ctx, "ada@example.com", "analytical engine")
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	svc := newTestUserService(t, mocks.NewMockUserStore(), mocks.NewMockProgressStore())

	_, err := svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestNewUserService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewUserService(nil, mocks.NewMockProgressStore(), &mocks.MockPasswordVerifier{}, inlineTx, nil)
	assert.Error(t, err)
	_, err = NewUserService(mocks.NewMockUserStore(), mocks.NewMockProgressStore(), nil, inlineTx, nil)
	assert.Error(t, err)
	_, err = NewUserService(mocks.NewMockUserStore(), mocks.NewMockProgressStore(), &mocks.MockPasswordVerifier{}, nil, nil)
	assert.Error(t, err)
}
