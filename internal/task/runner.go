package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	// A single worker keeps execution in submission order.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds one Execute call. Zero means no timeout.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   256,
		TaskTimeout: 10 * time.Second,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	taskChan   chan Task
	mu         sync.RWMutex
	started    bool
	stopped    bool
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}
	logger = logger.With(slog.String("component", "task_runner"))

	return &TaskRunner{
		taskChan: make(chan Task, config.QueueSize),
		config:   config,
		logger:   logger,
		errHandler: func(task Task, err error) {
			// Default error handler just logs the error
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a new task to the queue without blocking.
func (r *TaskRunner) Submit(task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return ErrRunnerStopped
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start begins processing tasks. Calling Start more than once has no effect.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop rejects new submissions, lets workers finish everything already
// queued, and waits for them to exit.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.taskChan)
	started := r.started
	r.mu.Unlock()

	if !started {
		for task := range r.taskChan {
			r.processTask(task, -1)
		}
		return
	}
	r.wg.Wait()
}

// worker processes tasks from the queue until it is closed
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)
	for task := range r.taskChan {
		r.processTask(task, id)
	}
	r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	logger.Debug("processing task")

	defer func() {
		if p := recover(); p != nil {
			logger.Error("task panicked", "panic", p)
		}
	}()

	if err := task.Execute(ctx); err != nil {
		r.errHandler(task, err)
		return
	}
	logger.Debug("task completed successfully")
}
