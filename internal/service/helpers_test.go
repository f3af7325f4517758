package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/domain/focus"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/session"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/phrazzld/focus-api/internal/task"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// inlineSubmitter runs tasks synchronously so saves are visible right away.
type inlineSubmitter struct {
	mu     sync.Mutex
	ran    []string
	reject error
}

func (s *inlineSubmitter) Submit(t task.Task) error {
	if s.reject != nil {
		return s.reject
	}
	s.mu.Lock()
	s.ran = append(s.ran, t.Type())
	s.mu.Unlock()
	return t.Execute(context.Background())
}

type memLocal struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memLocal) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, store.ErrStatsNotFound
	}
	return m.data, nil
}

func (m *memLocal) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

type memRemote struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.UserStats
	loadErr error
	saveErr error
}

func newMemRemote() *memRemote {
	return &memRemote{records: make(map[uuid.UUID]domain.UserStats)}
}

func (m *memRemote) Load(_ context.Context, id uuid.UUID) (*domain.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	s, ok := m.records[id]
	if !ok {
		return nil, store.ErrStatsNotFound
	}
	out := s.Clone()
	return &out, nil
}

func (m *memRemote) Save(_ context.Context, id uuid.UUID, stats *domain.UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[id] = stats.Clone()
	return nil
}

func (m *memRemote) get(id uuid.UUID) (domain.UserStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[id]
	return s, ok
}

// eventLog collects emitted events.
type eventLog struct {
	mu     sync.Mutex
	events []*events.Event
}

func (l *eventLog) EmitEvent(_ context.Context, e *events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) ofType(eventType string) []*events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*events.Event
	for _, e := range l.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// manualScheduler never fires on its own.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

type manualHandle struct{}

func (manualHandle) Stop() {}

func (s *manualScheduler) Every(_ time.Duration, fn func()) session.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return manualHandle{}
}

func (s *manualScheduler) fire(n int) {
	s.mu.Lock()
	fn := s.fns[len(s.fns)-1]
	s.mu.Unlock()
	for range n {
		fn()
	}
}

// stubGenerator answers with fixed text or a fixed error.
type stubGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	subject  string
	topics   []string
	history  []domain.ChatMessage
	subjects []string
}

func (g *stubGenerator) MotivationalTip(context.Context) (string, error) {
	return g.text, g.err
}

func (g *stubGenerator) StudyStrategy(_ context.Context, subject string, topics []string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subject, g.topics = subject, topics
	return g.text, g.err
}

func (g *stubGenerator) MentorReply(_ context.Context, _ string, history []domain.ChatMessage, subjects []string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history, g.subjects = history, subjects
	return g.text, g.err
}

type fixture struct {
	local     *memLocal
	remote    *memRemote
	submitter *inlineSubmitter
	events    *eventLog
	scheduler *manualScheduler
	gateway   *PersistenceGateway
	registry  *WorkspaceRegistry
}

func newFixture(t *testing.T, withRemote bool) *fixture {
	t.Helper()
	f := &fixture{
		local:     &memLocal{},
		submitter: &inlineSubmitter{},
		events:    &eventLog{},
		scheduler: &manualScheduler{},
	}
	var remote store.UserStatsStore
	if withRemote {
		f.remote = newMemRemote()
		remote = f.remote
	}
	f.gateway = NewPersistenceGateway(remote, f.local, f.submitter, f.events, quietLogger())
	f.registry = NewWorkspaceRegistry(RegistryConfig{
		Session:   session.Config{DefaultMinutes: 25},
		Rules:     focus.NewServiceWithParams(focus.NewParams(focus.ParamsConfig{Location: time.UTC})),
		Emitter:   f.events,
		Scheduler: f.scheduler,
		Clock:     session.ClockFunc(func() time.Time { return testNow }),
	}, f.gateway, quietLogger())
	t.Cleanup(f.registry.Close)
	return f
}

func (f *fixture) anon(t *testing.T) *Workspace {
	t.Helper()
	return f.registry.Get(context.Background(), nil)
}

var errBoom = errors.New("boom")
