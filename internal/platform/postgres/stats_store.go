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
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/store"
)

const upsertStatsQuery = `
	INSERT INTO user_data (id, stats, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET stats = EXCLUDED.stats, updated_at = EXCLUDED.updated_at`

// PostgresStatsStore keeps one JSONB stats snapshot per account in user_data.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresStatsStore creates a stats store over db.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ store.TxUserStatsStore = (*PostgresStatsStore)(nil)

// WithTx returns a store bound to tx.
func (s *PostgresStatsStore) WithTx(tx *sql.Tx) store.UserStatsStore {
	return &PostgresStatsStore{db: tx, logger: s.logger, now: s.now}
}

// Load implements store.UserStatsStore.Load. The stored document is hydrated
// so that snapshots written by older clients gain the newer collections.
func (s *PostgresStatsStore) Load(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT stats FROM user_data WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStatsNotFound
		}
		log.Error("failed to load stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user_stats", "load", "query failed", MapError(err))
	}

	stats, err := domain.HydrateSnapshot(raw)
	if err != nil {
		return nil, store.NewStoreError("user_stats", "load", "corrupt snapshot", err)
	}
	return &stats, nil
}

// Save implements store.UserStatsStore.Save as a full-document upsert.
func (s *PostgresStatsStore) Save(ctx context.Context, userID uuid.UUID, stats *domain.UserStats) error {
	if stats == nil {
		return store.NewStoreError("user_stats", "save", "nil snapshot", store.ErrInvalidEntity)
	}

	doc, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, upsertStatsQuery, userID, doc, s.now()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("user_stats", "save", "upsert failed", MapError(err))
	}
	return nil
}
