package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/domain/focus"
	"github.com/phrazzld/focus-api/internal/service"
	"github.com/phrazzld/focus-api/internal/service/auth"
	"github.com/phrazzld/focus-api/internal/session"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/phrazzld/focus-api/internal/task"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type inlineTasks struct{}

func (inlineTasks) Submit(t task.Task) error { return t.Execute(context.Background()) }

type memLocal struct {
	mu   sync.Mutex
	data []byte
}

func (m *memLocal) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, store.ErrStatsNotFound
	}
	return m.data, nil
}

func (m *memLocal) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

type noopHandle struct{}

func (noopHandle) Stop() {}

func (s *manualScheduler) Every(_ time.Duration, fn func()) session.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return noopHandle{}
}

func (s *manualScheduler) fire(n int) {
	s.mu.Lock()
	fn := s.fns[len(s.fns)-1]
	s.mu.Unlock()
	for range n {
		fn()
	}
}

type cannedGenerator struct {
	text string
	err  error
}

func (g cannedGenerator) MotivationalTip(context.Context) (string, error) { return g.text, g.err }

func (g cannedGenerator) StudyStrategy(context.Context, string, []string) (string, error) {
	return g.text, g.err
}

func (g cannedGenerator) MentorReply(context.Context, string, []domain.ChatMessage, []string) (string, error) {
	return g.text, g.err
}

type env struct {
	router    chi.Router
	registry  *service.WorkspaceRegistry
	scheduler *manualScheduler
}

// newEnv mounts every handler on a router the way the server does, minus
// the auth middleware. Requests act on the anonymous workspace unless
// withUser is used.
func newEnv(t *testing.T, gen cannedGenerator) *env {
	t.Helper()

	rules := focus.NewServiceWithParams(focus.NewParams(focus.ParamsConfig{Location: time.UTC}))
	sched := &manualScheduler{}
	gateway := service.NewPersistenceGateway(nil, &memLocal{}, inlineTasks{}, nil, quietLogger())
	registry := service.NewWorkspaceRegistry(service.RegistryConfig{
		Session:   session.Config{DefaultMinutes: 25},
		Rules:     rules,
		Scheduler: sched,
		Clock:     session.ClockFunc(func() time.Time { return testNow }),
	}, gateway, quietLogger())
	t.Cleanup(registry.Close)

	sessions := NewSessionHandler(registry)
	progress := NewProgressHandler(registry, service.NewProgressService(rules))
	planner := NewPlannerHandler(registry, service.NewPlannerService(gen, quietLogger()), quietLogger())
	shop := NewShopHandler(registry, service.NewShopService(nil, quietLogger()))
	prefs := NewPreferencesHandler(registry, service.NewPreferencesService())
	mentor := NewMentorHandler(registry, service.NewMentorService(gen, quietLogger()))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", progress.Stats)
		r.Get("/stats/summary", progress.Summary)
		r.Get("/reviews", progress.Reviews)

		r.Get("/session", sessions.Get)
		r.Post("/session/start", sessions.Start)
		r.Post("/session/cancel", sessions.Cancel)
		r.Post("/session/mastery", sessions.RateMastery)
		r.Put("/session/duration", sessions.SetDuration)

		r.Get("/planner/subjects", planner.ListSubjects)
		r.Post("/planner/subjects", planner.CreateSubject)
		r.Delete("/planner/subjects/{id}", planner.DeleteSubject)
		r.Post("/planner/subjects/{id}/lessons", planner.CreateLesson)
		r.Post("/planner/subjects/{id}/lessons/{lessonID}/toggle", planner.ToggleLesson)
		r.Put("/planner/subjects/{id}/lessons/{lessonID}/link", planner.SetLessonLink)
		r.Post("/planner/subjects/{id}/strategy", planner.GenerateStrategy)

		r.Get("/shop", shop.Catalog)
		r.Post("/shop/{itemID}/purchase", shop.Purchase)

		r.Put("/preferences/theme", prefs.SelectTheme)
		r.Post("/preferences/sidebar/toggle", prefs.ToggleSidebar)
		r.Post("/preferences/audio", prefs.UploadAudio)

		r.Get("/mentor/tip", mentor.Tip)
		r.Get("/mentor/chat", mentor.History)
		r.Post("/mentor/chat", mentor.Ask)
		r.Delete("/mentor/chat", mentor.Clear)
	})

	return &env{router: r, registry: registry, scheduler: sched}
}

func (e *env) do(t *testing.T, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, rdr)
	for _, opt := range opts {
		opt(r)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func withUser(id uuid.UUID) func(*http.Request) {
	return func(r *http.Request) {
		*r = *r.WithContext(shared.WithClaims(r.Context(), &auth.Claims{UserID: id, ID: "jti"}))
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
