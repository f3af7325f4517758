package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain/focus"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/session"
)

// DefaultLoadTimeout bounds the first snapshot load of an identity.
const DefaultLoadTimeout = 10 * time.Second

// RegistryConfig holds what every new workspace is built with.
type RegistryConfig struct {
	Session     session.Config
	Rules       focus.Service
	Emitter     events.EventEmitter
	Scheduler   session.Scheduler // nil means session.TickerScheduler
	Clock       session.Clock     // nil means the wall clock
	LoadTimeout time.Duration     // zero means DefaultLoadTimeout
}

type registryEntry struct {
	ready chan struct{}
	ws    *Workspace
}

// WorkspaceRegistry creates workspaces on first access and keeps them for
// the life of the process or until the identity signs out.
type WorkspaceRegistry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry

	cfg     RegistryConfig
	gateway *PersistenceGateway
	logger  *slog.Logger
}

// NewWorkspaceRegistry creates an empty registry.
func NewWorkspaceRegistry(cfg RegistryConfig, gateway *PersistenceGateway, logger *slog.Logger) *WorkspaceRegistry {
	if gateway == nil || cfg.Rules == nil {
		panic("registry requires a gateway and focus rules")
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.Discard
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = session.TickerScheduler{}
	}
	if cfg.Clock == nil {
		cfg.Clock = session.ClockFunc(time.Now)
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceRegistry{
		entries: make(map[string]*registryEntry),
		cfg:     cfg,
		gateway: gateway,
		logger:  logger.With(slog.String("component", "workspace_registry")),
	}
}

// Get returns the workspace for identity, loading its snapshot through the
// gateway on first access. Concurrent first accesses share one load.
//
// The load is detached from ctx so one caller hanging up cannot decide what
// every later request sees. If the load still times out, the callers get a
// closed workspace holding defaults: reads work, mutations fail with
// ErrWorkspaceClosed, nothing is saved over the stored record, and the next
// Get tries again.
func (r *WorkspaceRegistry) Get(ctx context.Context, identity *uuid.UUID) *Workspace {
	key := IdentityName(identity)

	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		r.mu.Unlock()
		<-e.ready
		return e.ws
	}
	e := &registryEntry{ready: make(chan struct{})}
	r.entries[key] = e
	r.mu.Unlock()

	ws, err := r.build(ctx, identity)
	if err != nil {
		ws.close()
		r.mu.Lock()
		if r.entries[key] == e {
			delete(r.entries, key)
		}
		r.mu.Unlock()
		r.logger.Warn("workspace load failed, not caching",
			slog.String("identity", key),
			slog.String("error", err.Error()))
	}
	e.ws = ws
	close(e.ready)
	return ws
}

func (r *WorkspaceRegistry) build(ctx context.Context, identity *uuid.UUID) (*Workspace, error) {
	var id *uuid.UUID
	if identity != nil {
		copied := *identity
		id = &copied
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.LoadTimeout)
	stats, err := r.gateway.load(loadCtx, id)
	cancel()

	ws := &Workspace{
		stats:    stats,
		identity: id,
		gateway:  r.gateway,
		clock:    r.cfg.Clock,
		cues:     session.NewCuePlayer(),
	}
	ws.machine = session.NewMachine(r.cfg.Session, ws, r.cfg.Rules, r.logger,
		session.WithScheduler(r.cfg.Scheduler),
		session.WithClock(r.cfg.Clock),
		session.WithAudioPlayer(ws.cues),
		session.WithEmitter(r.cfg.Emitter),
		session.WithIdentity(IdentityName(id)),
	)

	if err == nil {
		r.logger.Debug("workspace created", slog.String("identity", IdentityName(id)))
	}
	return ws, err
}

// Drop closes and forgets identity's workspace. The next Get reloads it
// from storage.
func (r *WorkspaceRegistry) Drop(identity *uuid.UUID) {
	key := IdentityName(identity)

	r.mu.Lock()
	e, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	if !ok {
		return
	}
	<-e.ready
	e.ws.close()
	r.logger.Debug("workspace dropped", slog.String("identity", key))
}

// Close closes every workspace. Pending saves already queued are not
// affected; the caller stops the task runner afterwards to flush them.
func (r *WorkspaceRegistry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range entries {
		<-e.ready
		e.ws.close()
	}
}
