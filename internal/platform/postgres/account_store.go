package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/store"
)

// AccountStore is the user store used for registration. Creating a user also
// seeds the default stats snapshot in the same transaction, so an account
// never exists without its user_data row.
type AccountStore struct {
	*PostgresUserStore
	db    *sql.DB
	stats *PostgresStatsStore
}

var _ store.UserStore = (*AccountStore)(nil)

// NewAccountStore creates an AccountStore over db.
func NewAccountStore(db *sql.DB, logger *slog.Logger) *AccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &AccountStore{
		PostgresUserStore: NewPostgresUserStore(db, logger),
		db:                db,
		stats:             NewPostgresStatsStore(db, logger),
	}
}

// Create inserts user and its default snapshot atomically.
func (s *AccountStore) Create(ctx context.Context, user *domain.User) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.PostgresUserStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		defaults := domain.NewDefaultUserStats()
		return s.stats.WithTx(tx).Save(ctx, user.ID, &defaults)
	})
}
