package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// syncLockTTL bounds how long a crashed worker can block a source.
const syncLockTTL = 10 * time.Minute

// SyncRunner executes one sync run for a source: it pulls the file
// listing from the gateway connection page by page and persists it,
// transitioning the run's queue entry to a terminal status at the end.
// Cancellation is cooperative: the entry's status is re-read between
// pages and a canceled run stops without touching already-saved files.
type SyncRunner struct {
	sourceStore    driven.SourceStore
	fileStore      driven.FileStore
	syncQueueStore driven.SyncQueueStore
	connector      driven.ConnectorClient
	lock           driven.DistributedLock
	pipeline       driven.FilePipeline
	logger         *slog.Logger
}

// SyncRunnerConfig holds dependencies for SyncRunner.
type SyncRunnerConfig struct {
	SourceStore    driven.SourceStore
	FileStore      driven.FileStore
	SyncQueueStore driven.SyncQueueStore
	Connector      driven.ConnectorClient
	Lock           driven.DistributedLock
	Pipeline       driven.FilePipeline // optional
	Logger         *slog.Logger
}

// NewSyncRunner creates a sync runner.
func NewSyncRunner(cfg SyncRunnerConfig) *SyncRunner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncRunner{
		sourceStore:    cfg.SourceStore,
		fileStore:      cfg.FileStore,
		syncQueueStore: cfg.SyncQueueStore,
		connector:      cfg.Connector,
		lock:           cfg.Lock,
		pipeline:       cfg.Pipeline,
		logger:         logger,
	}
}

// SyncResult summarizes one finished sync run.
type SyncResult struct {
	SourceID   string  `json:"source_id"`
	FilesSaved int     `json:"files_saved"`
	Canceled   bool    `json:"canceled"`
	Duration   float64 `json:"duration_seconds"`
}

// SyncSource runs the sync identified by the queue entry. The
// distributed lock guarantees at most one worker syncs a source at a
// time even when the queue delivers duplicates.
func (r *SyncRunner) SyncSource(ctx context.Context, projectID, sourceID, syncQueueID string) (*SyncResult, error) {
	startTime := time.Now()

	lockName := "sync:" + sourceID
	acquired, err := r.lock.Acquire(ctx, lockName, syncLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring sync lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrSyncInProgress
	}
	defer func() {
		if err := r.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
			r.logger.Warn("releasing sync lock", "source_id", sourceID, "error", err)
		}
	}()

	entry, err := r.syncQueueStore.Get(ctx, syncQueueID)
	if err != nil {
		return nil, fmt.Errorf("loading sync run %s: %w", syncQueueID, err)
	}
	if entry.Status == domain.SyncStatusCanceled {
		// Stopped before a worker picked it up.
		return &SyncResult{SourceID: sourceID, Canceled: true, Duration: time.Since(startTime).Seconds()}, nil
	}

	source, err := r.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return nil, r.failRun(ctx, syncQueueID, sourceID, fmt.Errorf("loading source: %w", err))
	}
	if !domain.CanSyncSource(source.Type) {
		return nil, r.failRun(ctx, syncQueueID, sourceID, fmt.Errorf("source type %s cannot sync", source.Type))
	}
	if source.Data.ConnectionID == "" {
		return nil, r.failRun(ctx, syncQueueID, sourceID, errors.New("source has no gateway connection"))
	}

	r.logger.Info("starting sync", "source_id", sourceID, "sync_queue_id", syncQueueID)

	saved := 0
	cursor := ""
	for {
		select {
		case <-ctx.Done():
			return nil, r.failRun(ctx, syncQueueID, sourceID, ctx.Err())
		default:
		}

		files, nextCursor, err := r.connector.FetchFiles(ctx, source.Data.ConnectionID, cursor)
		if err != nil {
			return nil, r.failRun(ctx, syncQueueID, sourceID, fmt.Errorf("fetching files: %w", err))
		}

		if r.pipeline != nil {
			files = r.pipeline.Process(source.Data.IntegrationID, files)
		}

		for _, file := range files {
			file.SourceID = sourceID
			if file.UpdatedAt.IsZero() {
				file.UpdatedAt = time.Now()
			}
			if err := r.fileStore.Save(ctx, projectID, file); err != nil {
				return nil, r.failRun(ctx, syncQueueID, sourceID, fmt.Errorf("saving file %s: %w", file.ID, err))
			}
			saved++
		}

		if nextCursor == "" || nextCursor == cursor {
			break
		}
		cursor = nextCursor

		// A stop request lands as a canceled status on the entry.
		entry, err = r.syncQueueStore.Get(ctx, syncQueueID)
		if err == nil && entry.Status == domain.SyncStatusCanceled {
			r.logger.Info("sync canceled", "source_id", sourceID, "files_saved", saved)
			return &SyncResult{
				SourceID:   sourceID,
				FilesSaved: saved,
				Canceled:   true,
				Duration:   time.Since(startTime).Seconds(),
			}, nil
		}

		if err := r.lock.Extend(ctx, lockName, syncLockTTL); err != nil {
			r.logger.Warn("extending sync lock", "source_id", sourceID, "error", err)
		}
	}

	if err := r.syncQueueStore.UpdateStatus(ctx, syncQueueID, domain.SyncStatusComplete, ""); err != nil {
		r.logger.Warn("marking sync complete", "sync_queue_id", syncQueueID, "error", err)
	}

	duration := time.Since(startTime).Seconds()
	r.logger.Info("sync completed",
		"source_id", sourceID,
		"files_saved", saved,
		"duration_seconds", duration,
	)

	return &SyncResult{
		SourceID:   sourceID,
		FilesSaved: saved,
		Duration:   duration,
	}, nil
}

// failRun records the failure on the queue entry and returns the
// original error.
func (r *SyncRunner) failRun(ctx context.Context, syncQueueID, sourceID string, cause error) error {
	r.logger.Error("sync failed", "source_id", sourceID, "sync_queue_id", syncQueueID, "error", cause)
	ctx = context.WithoutCancel(ctx)
	if err := r.syncQueueStore.UpdateStatus(ctx, syncQueueID, domain.SyncStatusErrored, cause.Error()); err != nil {
		r.logger.Warn("marking sync errored", "sync_queue_id", syncQueueID, "error", err)
	}
	return cause
}
