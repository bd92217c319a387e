package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/services"
)

// Worker processes tasks from the task queue, running the sync runner
// for each sync task.
type Worker struct {
	taskQueue      driven.TaskQueue
	runner         *services.SyncRunner
	sourceStore    driven.SourceStore
	syncQueueStore driven.SyncQueueStore
	logger         *slog.Logger

	concurrency    int
	dequeueTimeout int // seconds

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	Runner         *services.SyncRunner
	SourceStore    driven.SourceStore
	SyncQueueStore driven.SyncQueueStore
	Logger         *slog.Logger
	Concurrency    int // Number of concurrent task processors
	DequeueTimeout int // Seconds to wait for a task before checking again
}

// New creates a task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		runner:         cfg.Runner,
		sourceStore:    cfg.SourceStore,
		syncQueueStore: cfg.SyncQueueStore,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask processes a single task.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "project_id", task.ProjectID)
	logger.Info("processing task")

	startTime := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeSyncSource:
		err = w.handleSyncSource(ctx, task)
	case domain.TaskTypeSyncAll:
		err = w.handleSyncAll(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)

		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleSyncSource handles a sync_source task.
func (w *Worker) handleSyncSource(ctx context.Context, task *domain.Task) error {
	sourceID := task.SourceID()
	if sourceID == "" {
		return fmt.Errorf("source_id not found in task payload")
	}
	syncQueueID := task.SyncQueueID()
	if syncQueueID == "" {
		return fmt.Errorf("sync_queue_id not found in task payload")
	}

	result, err := w.runner.SyncSource(ctx, task.ProjectID, sourceID, syncQueueID)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			// Another worker holds the source lock. The queue may
			// deliver duplicates after claim timeouts; dropping the
			// task here keeps the sync exactly-once per source.
			w.logger.Warn("source already syncing, dropping task",
				"source_id", sourceID,
				"task_id", task.ID,
			)
			return nil
		}
		return err
	}

	if result.Canceled {
		w.logger.Info("sync run was cancelled",
			"source_id", sourceID,
			"files_saved", result.FilesSaved,
		)
	}
	return nil
}

// handleSyncAll handles a sync_all task: it runs a sync for every
// syncable source of the task's project, creating the queue entries
// that per-source tasks get from the API layer. Per-source failures
// are recorded on their entries and do not fail the task.
func (w *Worker) handleSyncAll(ctx context.Context, task *domain.Task) error {
	sources, err := w.sourceStore.ListByProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("listing project sources: %w", err)
	}

	var failed int
	var synced int
	for _, source := range sources {
		if !domain.CanSyncSource(source.Type) {
			continue
		}
		if running, _ := w.syncQueueStore.GetRunning(ctx, source.ID); running != nil {
			continue
		}

		entry := &domain.SyncQueueEntry{
			ID:        domain.GenerateID(),
			SourceID:  source.ID,
			Status:    domain.SyncStatusRunning,
			CreatedAt: time.Now(),
		}
		if err := w.syncQueueStore.Save(ctx, entry); err != nil {
			return fmt.Errorf("saving sync queue entry for %s: %w", source.ID, err)
		}

		if _, err := w.runner.SyncSource(ctx, task.ProjectID, source.ID, entry.ID); err != nil {
			failed++
			continue
		}
		synced++
	}

	if failed > 0 {
		w.logger.Warn("some syncs failed",
			"project_id", task.ProjectID,
			"synced", synced,
			"failed", failed,
		)
	}
	return nil
}

// Health reports the worker's health status.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
