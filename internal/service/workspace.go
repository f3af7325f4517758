package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/session"
)

// Workspace is the state container of one identity: the current snapshot,
// the session machine that mutates it and the audio cues the machine
// produced. It implements session.StatsStore.
type Workspace struct {
	mu     sync.Mutex
	stats  domain.UserStats
	closed bool

	identity *uuid.UUID
	gateway  *PersistenceGateway
	clock    session.Clock

	machine *session.Machine
	cues    *session.CuePlayer
}

var _ session.StatsStore = (*Workspace)(nil)

// Identity returns the user id, or nil for the anonymous workspace.
func (w *Workspace) Identity() *uuid.UUID {
	return w.identity
}

// Name is the identity label used in logs and events.
func (w *Workspace) Name() string {
	return IdentityName(w.identity)
}

// Stats implements session.StatsStore. The returned value is a deep copy.
func (w *Workspace) Stats() domain.UserStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats.Clone()
}

// Apply implements session.StatsStore. fn receives a copy of the snapshot;
// on success its result replaces the snapshot and a save is queued before
// the lock is released, so saves are written in mutation order. On error
// nothing changes.
func (w *Workspace) Apply(fn func(domain.UserStats) (domain.UserStats, error)) (domain.UserStats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return w.stats.Clone(), ErrWorkspaceClosed
	}

	next, err := fn(w.stats.Clone())
	if err != nil {
		return w.stats.Clone(), err
	}
	w.stats = next.Clone()
	w.gateway.Save(context.Background(), w.identity, w.stats)
	return next, nil
}

// Machine returns the identity's session state machine.
func (w *Workspace) Machine() *session.Machine {
	return w.machine
}

// Cues returns what the session wants played right now.
func (w *Workspace) Cues() session.AudioCues {
	return w.cues.Cues()
}

// Now returns the workspace clock's current time.
func (w *Workspace) Now() time.Time {
	return w.clock.Now()
}

// close stops the session machine and rejects further mutations.
func (w *Workspace) close() {
	w.machine.Close()

	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}
