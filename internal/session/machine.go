// Package session implements the focus timer: the idle → running → finished
// → idle cycle, its one-second tick and the reward and review mutations it
// applies to the stats aggregate.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/domain/focus"
	"github.com/phrazzld/focus-api/internal/events"
)

// State is a position in the session lifecycle.
type State string

// Session states.
const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// MaxMinutes bounds a single session.
const MaxMinutes = 600

// StatsStore holds the aggregate the machine mutates. Apply must run fn over
// the current snapshot and install its result as one replacement.
type StatsStore interface {
	Stats() domain.UserStats
	Apply(fn func(domain.UserStats) (domain.UserStats, error)) (domain.UserStats, error)
}

// Config holds the machine's timing parameters.
type Config struct {
	DefaultMinutes int
	// TickInterval is the length of one countdown step. Zero means one second.
	TickInterval time.Duration
}

// Status is a read-only view of the machine.
type Status struct {
	State            State             `json:"state"`
	Task             string            `json:"task"`
	RemainingSeconds int               `json:"remaining_seconds"`
	DurationSeconds  int               `json:"duration_seconds"`
	MasteryTask      string            `json:"mastery_task,omitempty"`
	LastCompletion   *focus.Completion `json:"last_completion,omitempty"`
	Streak           int               `json:"streak"`
	ComboActive      bool              `json:"combo_active"`
}

// Option customizes a Machine.
type Option func(*Machine)

// WithScheduler replaces the ticker-based scheduler.
func WithScheduler(s Scheduler) Option { return func(m *Machine) { m.scheduler = s } }

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(m *Machine) { m.clock = c } }

// WithAudioPlayer sets the player for ambient and alarm sounds.
func WithAudioPlayer(p AudioPlayer) Option { return func(m *Machine) { m.audio = p } }

// WithEmitter publishes lifecycle events to e.
func WithEmitter(e events.EventEmitter) Option { return func(m *Machine) { m.emitter = e } }

// WithIdentity tags emitted events with identity.
func WithIdentity(identity string) Option { return func(m *Machine) { m.identity = identity } }

// Machine is the session state machine for one identity. It is safe for
// concurrent use. Lock order is machine before stats store.
type Machine struct {
	mu sync.Mutex

	state          State
	task           string
	masteryTask    string
	configured     int // seconds for the next session
	duration       int // seconds of the current session
	remaining      int
	epoch          uint64
	handle         Handle
	lastCompletion *focus.Completion
	closed         bool

	tick      time.Duration
	stats     StatsStore
	rules     focus.Service
	scheduler Scheduler
	clock     Clock
	audio     AudioPlayer
	emitter   events.EventEmitter
	identity  string
	logger    *slog.Logger
}

// NewMachine creates an idle machine over stats.
func NewMachine(cfg Config, stats StatsStore, rules focus.Service, logger *slog.Logger, opts ...Option) *Machine {
	if stats == nil {
		panic("stats store cannot be nil")
	}
	if rules == nil {
		panic("focus rules cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if cfg.DefaultMinutes <= 0 {
		cfg.DefaultMinutes = 25
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	m := &Machine{
		state:      StateIdle,
		configured: cfg.DefaultMinutes * 60,
		remaining:  cfg.DefaultMinutes * 60,
		tick:       cfg.TickInterval,
		stats:      stats,
		rules:      rules,
		scheduler:  TickerScheduler{},
		clock:      ClockFunc(time.Now),
		audio:      nopPlayer{},
		emitter:    events.Discard,
		identity:   "local",
		logger:     logger.With(slog.String("component", "session_machine")),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("identity", m.identity))
	return m
}

// Start begins a session for task. minutes overrides the configured length
// for this session when positive.
func (m *Machine) Start(task string, minutes int) error {
	m.mu.Lock()

	label := strings.TrimSpace(task)
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case label == "":
		m.mu.Unlock()
		return ErrEmptyTask
	case m.state != StateIdle:
		m.mu.Unlock()
		return ErrSessionInProgress
	case minutes < 0 || minutes > MaxMinutes:
		m.mu.Unlock()
		return ErrInvalidDuration
	}

	seconds := m.configured
	if minutes > 0 {
		seconds = minutes * 60
	}

	m.state = StateRunning
	m.task = label
	m.duration = seconds
	m.remaining = seconds
	m.lastCompletion = nil
	m.epoch++
	epoch := m.epoch
	m.handle = m.scheduler.Every(m.tick, func() { m.onTick(epoch) })

	if sound := m.stats.Stats().ActiveSound; sound != nil {
		m.audio.Loop(*sound)
	}
	m.mu.Unlock()

	m.logger.Info("session started", "task", label, "duration_seconds", seconds)
	m.emit(events.TypeSessionStarted, events.SessionPayload{Task: label, DurationSeconds: seconds})
	return nil
}

// onTick advances the countdown for the session armed with epoch. Ticks from
// a superseded session or outside the running state are ignored.
func (m *Machine) onTick(epoch uint64) {
	m.mu.Lock()
	if m.state != StateRunning || epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	if m.remaining > 0 {
		m.remaining--
	}
	if m.remaining > 0 {
		m.mu.Unlock()
		return
	}

	completion, ok := m.completeLocked()
	task, duration := m.task, m.duration
	m.mu.Unlock()

	if !ok {
		return
	}
	m.logger.Info("session completed",
		"task", task,
		"reward", completion.Reward,
		"streak", completion.Streak,
		"combo_active", completion.ComboActive,
		"multiplier_used", completion.MultiplierUsed)
	m.emit(events.TypeSessionCompleted, events.SessionPayload{
		Task:            task,
		DurationSeconds: duration,
		Reward:          completion.Reward,
		Streak:          completion.Streak,
		ComboActive:     completion.ComboActive,
		MultiplierUsed:  completion.MultiplierUsed,
	})
}

// completeLocked finishes the running session. m.mu must be held.
func (m *Machine) completeLocked() (focus.Completion, bool) {
	m.stopHandleLocked()
	m.audio.StopLoop()
	if alarm := m.stats.Stats().ActiveAlarm; alarm != nil {
		m.audio.PlayOnce(*alarm)
	}

	var completion focus.Completion
	now := m.clock.Now()
	_, err := m.stats.Apply(func(s domain.UserStats) (domain.UserStats, error) {
		next, c, err := m.rules.CompleteSession(s, m.duration, now)
		completion = c
		return next, err
	})

	m.state = StateFinished
	m.masteryTask = m.task
	m.remaining = 0
	if err != nil {
		m.logger.Error("failed to apply session completion", "error", err)
		return focus.Completion{}, false
	}
	m.lastCompletion = &completion
	return completion, true
}

// Cancel aborts the running session without any reward.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return ErrNotRunning
	}

	m.stopHandleLocked()
	m.audio.StopLoop()
	task, duration := m.task, m.duration
	m.state = StateIdle
	m.remaining = m.configured
	m.mu.Unlock()

	m.logger.Info("session cancelled", "task", task)
	m.emit(events.TypeSessionCancelled, events.SessionPayload{Task: task, DurationSeconds: duration})
	return nil
}

// RateMastery records the self-assessment for the finished session and
// schedules its review.
func (m *Machine) RateMastery(level int) (domain.Review, error) {
	m.mu.Lock()
	if m.state != StateFinished {
		m.mu.Unlock()
		return domain.Review{}, ErrNotFinished
	}

	var review domain.Review
	now := m.clock.Now()
	_, err := m.stats.Apply(func(s domain.UserStats) (domain.UserStats, error) {
		next, r, err := m.rules.ScheduleReview(s, m.masteryTask, level, now)
		review = r
		return next, err
	})
	if err != nil {
		m.mu.Unlock()
		return domain.Review{}, err
	}

	task := m.masteryTask
	m.state = StateIdle
	m.task = ""
	m.masteryTask = ""
	m.remaining = m.configured
	m.mu.Unlock()

	delay := int(review.NextReviewDate.Sub(now).Round(time.Hour).Hours() / 24)
	m.logger.Info("review scheduled", "task", task, "mastery", level, "delay_days", delay)
	m.emit(events.TypeReviewScheduled, events.ReviewPayload{
		Task:      task,
		Mastery:   level,
		ReviewAt:  review.NextReviewDate,
		DelayDays: delay,
	})
	return review, nil
}

// SetDuration changes the length of future sessions. Only allowed while idle.
func (m *Machine) SetDuration(minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return ErrSessionInProgress
	}
	if minutes <= 0 || minutes > MaxMinutes {
		return ErrInvalidDuration
	}
	m.configured = minutes * 60
	m.remaining = m.configured
	return nil
}

// Status returns the current state with the streak computed as of now.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats.Stats()
	now := m.clock.Now()

	duration := m.duration
	if m.state == StateIdle {
		duration = m.configured
	}

	st := Status{
		State:            m.state,
		Task:             m.task,
		RemainingSeconds: m.remaining,
		DurationSeconds:  duration,
		MasteryTask:      m.masteryTask,
		Streak:           m.rules.Streak(stats, now),
		ComboActive:      m.rules.ComboActive(stats, now),
	}
	if m.lastCompletion != nil {
		c := *m.lastCompletion
		st.LastCompletion = &c
	}
	return st
}

// Close stops any outstanding tick and silences ambient playback. The machine
// rejects new sessions afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.stopHandleLocked()
	m.epoch++
	if m.state == StateRunning {
		m.audio.StopLoop()
		m.state = StateIdle
		m.remaining = m.configured
	}
}

func (m *Machine) stopHandleLocked() {
	if m.handle != nil {
		m.handle.Stop()
		m.handle = nil
	}
}

func (m *Machine) emit(eventType string, payload any) {
	event, err := events.NewEvent(eventType, m.identity, payload)
	if err != nil {
		m.logger.Error("failed to build event", "event_type", eventType, "error", err)
		return
	}
	if err := m.emitter.EmitEvent(context.Background(), event); err != nil {
		m.logger.Warn("event handler failed", "event_type", eventType, "error", err)
	}
}
