package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestUserStoreCreate(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("reader@example.com", "secret123")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$hash"

	t.Run("inserts", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.HashedPassword, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresUserStore(db, quietLogger()).Create(context.Background(), user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err := NewPostgresUserStore(db, quietLogger()).Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("missing hash", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		bare := *user
		bare.HashedPassword = ""

		err := NewPostgresUserStore(db, quietLogger()).Create(context.Background(), &bare)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestUserStoreGet(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	columns := []string{"id", "email", "hashed_password", "created_at", "updated_at"}

	t.Run("by email is case insensitive", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("FROM users WHERE email").
			WithArgs("reader@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "reader@example.com", "hash", created, created))

		u, err := NewPostgresUserStore(db, quietLogger()).GetByEmail(context.Background(), "  Reader@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "hash", u.HashedPassword)
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("FROM users WHERE id").WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresUserStore(db, quietLogger()).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("query failure", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("FROM users WHERE id").WillReturnError(errors.New("connection reset"))

		_, err := NewPostgresUserStore(db, quietLogger()).GetByID(context.Background(), id)
		var se *store.StoreError
		assert.ErrorAs(t, err, &se)
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestStatsStoreLoad(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("hydrates older documents", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT stats FROM user_data").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"stats"}).
				AddRow([]byte(`{"neurons": 42, "subjects": [{"id": "s1", "name": "Math"}]}`)))

		stats, err := NewPostgresStatsStore(db, quietLogger()).Load(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 42, stats.Neurons)
		assert.Equal(t, 42, stats.TotalNeuronsEarned)
		require.Len(t, stats.Subjects, 1)
		assert.NotNil(t, stats.Subjects[0].Lessons)
		assert.NotNil(t, stats.ChatHistory)
	})

	t.Run("missing row", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT stats FROM user_data").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresStatsStore(db, quietLogger()).Load(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrStatsNotFound)
	})

	t.Run("corrupt document", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT stats FROM user_data").
			WillReturnRows(sqlmock.NewRows([]string{"stats"}).AddRow([]byte(`not json`)))

		_, err := NewPostgresStatsStore(db, quietLogger()).Load(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestStatsStoreSave(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	stats := domain.NewDefaultUserStats()
	stats.Neurons = 130
	doc, err := json.Marshal(&stats)
	require.NoError(t, err)
	savedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("upserts full document", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec("ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs(id, doc, savedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresStatsStore(db, quietLogger())
		s.now = func() time.Time { return savedAt }
		require.NoError(t, s.Save(context.Background(), id, &stats))
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		mock.ExpectExec("INSERT INTO user_data").
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "user_data_id_fkey"})

		err := NewPostgresStatsStore(db, quietLogger()).Save(context.Background(), id, &stats)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		err := NewPostgresStatsStore(db, quietLogger()).Save(context.Background(), id, nil)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestStatsStoreWithTx(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_data").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewPostgresStatsStore(db, quietLogger())
	stats := domain.NewDefaultUserStats()
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).Save(ctx, uuid.New(), &stats)
	})
	require.NoError(t, err)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "stats"}, store.ErrInvalidEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tt.in), tt.want)
		})
	}

	assert.NoError(t, MapError(nil))
	other := errors.New("other")
	assert.Same(t, other, MapError(other))
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	err := Migrate(context.Background(), db, "sideways", quietLogger())
	assert.ErrorContains(t, err, "unknown migration command")
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := migrationsFS.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "00001_create_users.sql", entries[0].Name())
	assert.Equal(t, "00002_create_user_data.sql", entries[1].Name())
}
