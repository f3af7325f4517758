package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, TraceIDLength*2)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(context.Background())))
	assert.Len(t, generateFallbackTraceID(), TraceIDLength*2)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Identity(context.Background()))
	assert.Nil(t, Claims(context.Background()))

	claims := &auth.Claims{UserID: uuid.New(), ID: "jti-1"}
	ctx := WithClaims(context.Background(), claims)
	require.NotNil(t, Identity(ctx))
	assert.Equal(t, claims.UserID, *Identity(ctx))
	assert.Same(t, claims, Claims(ctx))

	nilID := context.WithValue(context.Background(), UserIDContextKey, uuid.Nil)
	assert.Nil(t, Identity(nilID))
}

type sample struct {
	Name string `json:"name" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
		ok      bool
	}{
		{name: "valid", body: `{"name":"x"}`, ok: true},
		{name: "empty", body: ``, wantErr: ErrEmptyBody},
		{name: "unknown field", body: `{"name":"x","extra":1}`},
		{name: "trailing data", body: `{"name":"x"} {}`},
		{name: "malformed", body: `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sample
			err := DecodeJSON(httptest.NewRecorder(), r, &v)
			switch {
			case tt.ok:
				require.NoError(t, err)
				assert.Equal(t, "x", v.Name)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&sample{Name: "x"}))
	assert.Error(t, ValidateRequest(&sample{}))

	custom := errors.New("custom")
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: custom}), custom)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := logger.WithLogger(SetTraceID(context.Background()), log)
	r := httptest.NewRequest(http.MethodGet, "/api/stats", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Something went wrong",
		errors.New("dial postgres://focus:hunter22@db:5432/focus failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Something went wrong", body.Error)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)

	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.NotContains(t, logs.String(), "hunter22")
	assert.NotContains(t, w.Body.String(), "postgres")
}

func TestRespondWithErrorLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		level  string
	}{
		{"client error", http.StatusBadRequest, nil, "DEBUG"},
		{"elevated client error", http.StatusUnauthorized, []ResponseOption{WithElevatedLogLevel()}, "WARN"},
		{"rate limited", http.StatusTooManyRequests, nil, "WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			r := httptest.NewRequest(http.MethodGet, "/", nil).
				WithContext(logger.WithLogger(context.Background(), log))

			RespondWithErrorAndLog(httptest.NewRecorder(), r, tt.status, "msg", nil, tt.opts...)
			assert.Contains(t, logs.String(), `"level":"`+tt.level+`"`)
		})
	}
}
