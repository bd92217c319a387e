package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// Ensure syncService implements SyncService
var _ driving.SyncService = (*syncService)(nil)

// syncService implements the SyncService interface
type syncService struct {
	syncQueueStore driven.SyncQueueStore
	taskQueue      driven.TaskQueue
	logger         *slog.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	syncQueueStore driven.SyncQueueStore,
	taskQueue driven.TaskQueue,
	logger *slog.Logger,
) driving.SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &syncService{
		syncQueueStore: syncQueueStore,
		taskQueue:      taskQueue,
		logger:         logger,
	}
}

// TriggerSync enqueues a sync run for each syncable source
func (s *syncService) TriggerSync(ctx context.Context, projectID string, sources []*domain.Source) ([]*domain.SyncQueueEntry, error) {
	var entries []*domain.SyncQueueEntry
	for _, source := range sources {
		if !domain.CanSyncSource(source.Type) {
			s.logger.Debug("skipping non-syncable source", "source_id", source.ID, "type", source.Type)
			continue
		}

		if running, _ := s.syncQueueStore.GetRunning(ctx, source.ID); running != nil {
			return entries, domain.ErrSyncInProgress
		}

		entry := &domain.SyncQueueEntry{
			ID:        domain.GenerateID(),
			SourceID:  source.ID,
			Status:    domain.SyncStatusRunning,
			CreatedAt: time.Now(),
		}
		if err := s.syncQueueStore.Save(ctx, entry); err != nil {
			return entries, fmt.Errorf("saving sync queue entry: %w", err)
		}

		task := domain.NewSyncSourceTask(projectID, source.ID, entry.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			// Roll the entry back so the source is not stuck running.
			_ = s.syncQueueStore.UpdateStatus(ctx, entry.ID, domain.SyncStatusErrored, "enqueue failed")
			return entries, fmt.Errorf("enqueueing sync task: %w", err)
		}

		s.logger.Info("sync triggered", "source_id", source.ID, "sync_queue_id", entry.ID)
		entries = append(entries, entry)
	}
	return entries, nil
}

// StopSync requests cancellation of the running sync for a source
func (s *syncService) StopSync(ctx context.Context, sourceID string) error {
	running, err := s.syncQueueStore.GetRunning(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSyncNotRunning
		}
		return fmt.Errorf("checking running sync: %w", err)
	}
	if running == nil {
		return domain.ErrSyncNotRunning
	}
	if err := s.syncQueueStore.UpdateStatus(ctx, running.ID, domain.SyncStatusCanceled, ""); err != nil {
		return fmt.Errorf("cancelling sync: %w", err)
	}
	s.logger.Info("sync cancelled", "source_id", sourceID, "sync_queue_id", running.ID)
	return nil
}

// CurrentStatus returns the status of the latest sync run for a
// source; empty when the source has never been synced
func (s *syncService) CurrentStatus(ctx context.Context, sourceID string) (domain.SyncStatus, error) {
	latest, err := s.syncQueueStore.LatestBySource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return latest.Status, nil
}

// LatestByProject returns the latest queue entry per source
func (s *syncService) LatestByProject(ctx context.Context, projectID string) ([]*domain.SyncQueueEntry, error) {
	return s.syncQueueStore.LatestByProject(ctx, projectID)
}
