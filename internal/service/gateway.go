package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/store"
	"github.com/phrazzld/focus-api/internal/task"
)

// Persistence targets.
const (
	TargetLocal  = "local"
	TargetRemote = "remote"
)

// TaskSubmitter queues background work. *task.TaskRunner satisfies it.
type TaskSubmitter interface {
	Submit(t task.Task) error
}

// PersistenceGateway loads and saves whole snapshots. An identity selects
// the remote per-user record; no identity selects the local snapshot.
type PersistenceGateway struct {
	remote  store.UserStatsStore // nil when no database is configured
	local   store.LocalStatsStore
	tasks   TaskSubmitter
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewPersistenceGateway creates a gateway. remote may be nil.
func NewPersistenceGateway(
	remote store.UserStatsStore,
	local store.LocalStatsStore,
	tasks TaskSubmitter,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *PersistenceGateway {
	if local == nil || tasks == nil {
		panic("gateway requires a local store and a task submitter")
	}
	if emitter == nil {
		emitter = events.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistenceGateway{
		remote:  remote,
		local:   local,
		tasks:   tasks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "persistence_gateway")),
	}
}

// RemoteEnabled reports whether authenticated identities can be persisted.
func (g *PersistenceGateway) RemoteEnabled() bool {
	return g.remote != nil
}

// Load returns the stored aggregate for identity. Absent records and load
// failures both yield the default aggregate; failures are logged.
func (g *PersistenceGateway) Load(ctx context.Context, identity *uuid.UUID) domain.UserStats {
	stats, _ := g.load(ctx, identity)
	return stats
}

// load is Load that also reports when ctx ended before storage answered. The
// defaults returned in that case say nothing about the stored record.
func (g *PersistenceGateway) load(ctx context.Context, identity *uuid.UUID) (domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if identity != nil {
		if g.remote == nil {
			log.Warn("remote load skipped", slog.String("error", ErrRemoteUnavailable.Error()))
			return domain.NewDefaultUserStats(), nil
		}
		stats, err := g.remote.Load(ctx, *identity)
		switch {
		case err == nil:
			return domain.Normalize(*stats), nil
		case interrupted(ctx, err):
			log.Warn("remote load interrupted",
				slog.String("user_id", identity.String()),
				slog.String("error", err.Error()))
			return domain.NewDefaultUserStats(), fmt.Errorf("%w: %w", ErrLoadInterrupted, err)
		case errors.Is(err, store.ErrStatsNotFound):
			log.Debug("no remote snapshot, using defaults", slog.String("user_id", identity.String()))
		default:
			log.Error("remote load failed, using defaults",
				slog.String("user_id", identity.String()),
				slog.String("error", err.Error()))
		}
		return domain.NewDefaultUserStats(), nil
	}

	raw, err := g.local.Load(ctx)
	if err != nil {
		if interrupted(ctx, err) {
			log.Warn("local load interrupted", slog.String("error", err.Error()))
			return domain.NewDefaultUserStats(), fmt.Errorf("%w: %w", ErrLoadInterrupted, err)
		}
		if !errors.Is(err, store.ErrStatsNotFound) {
			log.Error("local load failed, using defaults", slog.String("error", err.Error()))
		}
		return domain.NewDefaultUserStats(), nil
	}
	stats, err := domain.HydrateSnapshot(raw)
	if err != nil {
		log.Error("local snapshot unreadable, using defaults", slog.String("error", err.Error()))
		return domain.NewDefaultUserStats(), nil
	}
	return stats, nil
}

// interrupted reports whether err came from ctx ending rather than from
// storage itself.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Save queues a full overwrite of identity's snapshot. It never blocks on
// I/O; failures are logged and reported as snapshot.failed events, and the
// in-memory snapshot stays authoritative.
func (g *PersistenceGateway) Save(ctx context.Context, identity *uuid.UUID, stats domain.UserStats) {
	target, name := TargetLocal, IdentityName(identity)
	if identity != nil {
		target = TargetRemote
	}
	snapshot := stats.Clone()

	t := task.NewFuncTask(task.TaskTypeSnapshotSave, func(taskCtx context.Context) error {
		err := g.write(taskCtx, identity, &snapshot)
		g.report(taskCtx, name, target, err)
		return err
	})

	if err := g.tasks.Submit(t); err != nil {
		logger.FromContextOrDefault(ctx, g.logger).Error("snapshot save dropped",
			slog.String("identity", name),
			slog.String("error", err.Error()))
		g.report(ctx, name, target, err)
	}
}

func (g *PersistenceGateway) write(ctx context.Context, identity *uuid.UUID, stats *domain.UserStats) error {
	if identity != nil {
		if g.remote == nil {
			return ErrRemoteUnavailable
		}
		return g.remote.Save(ctx, *identity, stats)
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return g.local.Save(ctx, data)
}

func (g *PersistenceGateway) report(ctx context.Context, identity, target string, err error) {
	eventType, payload := events.TypeSnapshotSaved, events.SnapshotPayload{Target: target}
	if err != nil {
		eventType, payload.Error = events.TypeSnapshotFailed, err.Error()
	}
	event, evErr := events.NewEvent(eventType, identity, payload)
	if evErr != nil {
		return
	}
	_ = g.emitter.EmitEvent(ctx, event)
}

// IdentityName is the event and log label of an identity.
func IdentityName(identity *uuid.UUID) string {
	if identity == nil {
		return TargetLocal
	}
	return identity.String()
}
