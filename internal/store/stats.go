package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
)

// UserStatsStore persists the remote per-user stats record.
type UserStatsStore interface {
	// Load returns the stored snapshot for userID.
	// Returns ErrStatsNotFound when nothing has been saved yet.
	Load(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// Save overwrites the snapshot for userID. Last writer wins.
	Save(ctx context.Context, userID uuid.UUID, stats *domain.UserStats) error
}

// TxUserStatsStore is a UserStatsStore that can join a caller's transaction.
type TxUserStatsStore interface {
	UserStatsStore
	WithTx(tx *sql.Tx) UserStatsStore
}

// LocalStatsStore persists the anonymous on-device snapshot as raw JSON so
// that older, looser shapes can be hydrated forward on load.
type LocalStatsStore interface {
	// Load returns the stored bytes. Returns ErrStatsNotFound when empty.
	Load(ctx context.Context) ([]byte, error)

	// Save overwrites the stored bytes.
	Save(ctx context.Context, data []byte) error
}
