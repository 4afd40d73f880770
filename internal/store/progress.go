package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// ProgressStore persists the per-user ProgressRecord.
type ProgressStore interface {
	// GetProgress returns ErrProgressNotFound when the user has no record.
	GetProgress(ctx context.Context, userID uuid.UUID) (*domain.ProgressRecord, error)

	// PutProgress merges update into the user's record, creating it if needed.
	// Only the fields present in update are written; a quiz attempt is
	// appended to the stored history. The merge happens in a single
	// statement so concurrent writers cannot lose each other's fields.
	PutProgress(ctx context.Context, userID uuid.UUID, update domain.ProgressUpdate) error

	// WithTx returns a ProgressStore bound to tx.
	WithTx(tx *sqlx.Tx) ProgressStore
}
