package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Test@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "secret1", user.Password)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "secret1", ErrEmptyEmail},
		{"invalid email", "not-an-email", "secret1", ErrInvalidEmail},
		{"display name email", "Bob <bob@example.com>", "secret1", ErrInvalidEmail},
		{"empty password", "a@example.com", "", ErrEmptyPassword},
		{"short password", "a@example.com", "12345", ErrPasswordTooShort},
		{"long password", "a@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	u := User{ID: uuid.New(), Email: "a@example.com", HashedPassword: "$2a$10$hash"}
	assert.NoError(t, u.Validate())

	u.ID = uuid.Nil
	assert.ErrorIs(t, u.Validate(), ErrEmptyUserID)
}
