//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/domain/analytics"
	"github.com/phrazzld/thinkforge-api/internal/platform/postgres"
	"github.com/phrazzld/thinkforge-api/internal/store"
	"github.com/phrazzld/thinkforge-api/internal/testdb"
)

func createTestUser(t *testing.T, tx *sqlx.Tx) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString()+"@example.com", "correct horse battery")
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil).Create(context.Background(), user))
	return user
}

func TestUserStore_Integration(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(tx *sqlx.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)

		user := createTestUser(t, tx)
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse battery")))

		byID, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)

		byEmail, err := users.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		dup, err := domain.NewUser(user.Email, "another long password")
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestProgressStore_Integration(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(tx *sqlx.Tx) {
		ctx := context.Background()
		progress := postgres.NewPostgresProgressStore(tx, nil)
		user := createTestUser(t, tx)

		_, err := progress.GetProgress(ctx, user.ID)
		assert.ErrorIs(t, err, store.ErrProgressNotFound)

		require.NoError(t, progress.PutProgress(ctx, user.ID, domain.FlashcardsGenerated(7, "Go channels")))

		day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		for i, accuracy := range []float64{80, 90} {
			attempt := domain.QuizAttempt{Date: day.AddDate(0, 0, i), Accuracy: accuracy}
			require.NoError(t, progress.PutProgress(ctx, user.ID, domain.ProgressUpdate{AppendQuizAttempt: &attempt}))
		}

		count := 3
		require.NoError(t, progress.PutProgress(ctx, user.ID, domain.ProgressUpdate{FlashcardCount: &count}))

		record, err := progress.GetProgress(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, record.FlashcardCount)
		assert.Equal(t, "Go channels", record.TopicName, "topic untouched by a count-only update")

		attempts, err := analytics.DecodeQuizAttempts(record.QuizScores, time.UTC)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, 80.0, attempts[0].Accuracy)
		assert.Equal(t, 90.0, attempts[1].Accuracy)
		assert.True(t, attempts[1].Date.Equal(day.AddDate(0, 0, 1)))

		negative := -1
		err = progress.PutProgress(ctx, user.ID, domain.ProgressUpdate{FlashcardCount: &negative})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestProgressStore_LegacyStringScores(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(tx *sqlx.Tx) {
		ctx := context.Background()
		progress := postgres.NewPostgresProgressStore(tx, nil)
		user := createTestUser(t, tx)

		legacy, err := json.Marshal(`[{"date":"2026-03-01","accuracy":"70"}]`)
		require.NoError(t, err)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_progress (user_id, quiz_scores) VALUES ($1, $2::jsonb)`, user.ID, string(legacy))
		require.NoError(t, err)

		record, err := progress.GetProgress(ctx, user.ID)
		require.NoError(t, err)
		attempts, err := analytics.DecodeQuizAttempts(record.QuizScores, time.UTC)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, 70.0, attempts[0].Accuracy)

		attempt := domain.QuizAttempt{Date: time.Now().UTC(), Accuracy: 50}
		require.NoError(t, progress.PutProgress(ctx, user.ID, domain.ProgressUpdate{AppendQuizAttempt: &attempt}))

		record, err = progress.GetProgress(ctx, user.ID)
		require.NoError(t, err)
		attempts, err = analytics.DecodeQuizAttempts(record.QuizScores, time.UTC)
		require.NoError(t, err)
		require.Len(t, attempts, 2, "legacy history is kept and extended")
		assert.Equal(t, 70.0, attempts[0].Accuracy)
		assert.True(t, attempts[0].Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 50.0, attempts[1].Accuracy)

		var kind string
		require.NoError(t, tx.GetContext(ctx, &kind,
			`SELECT jsonb_typeof(quiz_scores) FROM user_progress WHERE user_id = $1`, user.ID))
		assert.Equal(t, "array", kind)
	})
}

func TestProgressStore_UndecodableScoresReplaced(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(tx *sqlx.Tx) {
		ctx := context.Background()
		progress := postgres.NewPostgresProgressStore(tx, nil)
		user := createTestUser(t, tx)

		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_progress (user_id, quiz_scores) VALUES ($1, '"not json"'::jsonb)`, user.ID)
		require.NoError(t, err)

		attempt := domain.QuizAttempt{Date: time.Now().UTC(), Accuracy: 40}
		require.NoError(t, progress.PutProgress(ctx, user.ID, domain.ProgressUpdate{AppendQuizAttempt: &attempt}))

		record, err := progress.GetProgress(ctx, user.ID)
		require.NoError(t, err)
		attempts, err := analytics.DecodeQuizAttempts(record.QuizScores, time.UTC)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, 40.0, attempts[0].Accuracy)
	})
}

func TestPathStore_Integration(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(tx *sqlx.Tx) {
		ctx := context.Background()
		paths := postgres.NewPostgresPathStore(tx, nil)
		owner := createTestUser(t, tx)
		stranger := createTestUser(t, tx)

		modules := []domain.Module{
			domain.Module(`{"title":"Basics"}`),
			domain.Module(`{"title":"Goroutines"}`),
		}

		first, err := paths.CreatePath(ctx, owner.ID, "Go", modules)
		require.NoError(t, err)
		assert.Equal(t, 0, first.Progress)

		second, err := paths.CreatePath(ctx, owner.ID, "Go", modules)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID, "creation is not idempotent")

		_, err = paths.CreatePath(ctx, owner.ID, "Rust", nil)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)

		listed, err := paths.ListPaths(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, first.ID, listed[0].ID)
		require.Len(t, listed[0].Modules, 2)
		assert.JSONEq(t, `{"title":"Basics"}`, string(listed[0].Modules[0]))

		assert.ErrorIs(t, paths.DeletePath(ctx, stranger.ID, first.ID), store.ErrPathNotFound)
		require.NoError(t, paths.DeletePath(ctx, owner.ID, first.ID))
		assert.ErrorIs(t, paths.DeletePath(ctx, owner.ID, first.ID), store.ErrPathNotFound)

		listed, err = paths.ListPaths(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, second.ID, listed[0].ID)
	})
}
