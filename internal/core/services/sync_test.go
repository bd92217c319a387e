package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven/mocks"
)

func TestSyncService_TriggerSync(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	syncable := &domain.Source{ID: "src-1", ProjectID: "proj-1", Type: domain.SourceTypeConnector}
	legacy := &domain.Source{ID: "src-2", ProjectID: "proj-1", Type: domain.SourceTypeGitHub}

	entries, err := svc.TriggerSync(ctx, "proj-1", []*domain.Source{syncable, legacy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry (legacy types cannot sync), got %d", len(entries))
	}
	if entries[0].SourceID != "src-1" || entries[0].Status != domain.SyncStatusRunning {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if taskQueue.PendingCount() != 1 {
		t.Errorf("expected 1 task, got %d", taskQueue.PendingCount())
	}

	task, err := taskQueue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.SourceID() != "src-1" {
		t.Errorf("expected task for src-1, got %q", task.SourceID())
	}
	if task.SyncQueueID() != entries[0].ID {
		t.Errorf("task must reference the queue entry, got %q", task.SyncQueueID())
	}
}

func TestSyncService_TriggerSync_AlreadyRunning(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	source := &domain.Source{ID: "src-1", ProjectID: "proj-1", Type: domain.SourceTypeConnector}

	if _, err := svc.TriggerSync(ctx, "proj-1", []*domain.Source{source}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.TriggerSync(ctx, "proj-1", []*domain.Source{source}); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}
	if taskQueue.PendingCount() != 1 {
		t.Errorf("no second task may be enqueued, got %d", taskQueue.PendingCount())
	}
}

func TestSyncService_StopSync(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	source := &domain.Source{ID: "src-1", ProjectID: "proj-1", Type: domain.SourceTypeConnector}

	// Stop without a running sync is refused.
	if err := svc.StopSync(ctx, "src-1"); !errors.Is(err, domain.ErrSyncNotRunning) {
		t.Errorf("expected ErrSyncNotRunning, got %v", err)
	}

	entries, err := svc.TriggerSync(ctx, "proj-1", []*domain.Source{source})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.StopSync(ctx, "src-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := syncQueueStore.Get(ctx, entries[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.SyncStatusCanceled {
		t.Errorf("expected canceled, got %s", entry.Status)
	}
	if entry.EndedAt == nil {
		t.Error("terminal entries carry an end timestamp")
	}

	// Stopping again is refused: the run is no longer running.
	if err := svc.StopSync(ctx, "src-1"); !errors.Is(err, domain.ErrSyncNotRunning) {
		t.Errorf("expected ErrSyncNotRunning after cancel, got %v", err)
	}
}

func TestSyncService_StopSync_StoreFailure(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	// A store failure must surface as-is, not as ErrSyncNotRunning.
	storeErr := errors.New("connection reset")
	syncQueueStore.FailNextGetRunning = storeErr
	err := svc.StopSync(ctx, "src-1")
	if errors.Is(err, domain.ErrSyncNotRunning) {
		t.Error("store failures must not be reported as a not-running sync")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("expected the store error to propagate, got %v", err)
	}
}

func TestSyncService_CurrentStatus(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	// Never synced: empty status, no error.
	status, err := svc.CurrentStatus(ctx, "src-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "" {
		t.Errorf("expected empty status, got %q", status)
	}

	syncQueueStore.SaveForProject(&domain.SyncQueueEntry{
		ID: "run-1", SourceID: "src-1", Status: domain.SyncStatusErrored,
		CreatedAt: time.Now().Add(-time.Hour),
	}, "proj-1")
	syncQueueStore.SaveForProject(&domain.SyncQueueEntry{
		ID: "run-2", SourceID: "src-1", Status: domain.SyncStatusComplete,
		CreatedAt: time.Now(),
	}, "proj-1")

	status, err = svc.CurrentStatus(ctx, "src-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.SyncStatusComplete {
		t.Errorf("expected the latest run's status, got %q", status)
	}
}

func TestSyncService_TriggerSync_EnqueueFailure(t *testing.T) {
	syncQueueStore := mocks.NewMockSyncQueueStore()
	taskQueue := mocks.NewMockTaskQueue()
	taskQueue.EnqueueFn = func(task *domain.Task) error {
		return errors.New("queue unavailable")
	}
	svc := NewSyncService(syncQueueStore, taskQueue, nil)
	ctx := context.Background()

	source := &domain.Source{ID: "src-1", ProjectID: "proj-1", Type: domain.SourceTypeConnector}
	if _, err := svc.TriggerSync(ctx, "proj-1", []*domain.Source{source}); err == nil {
		t.Fatal("expected an error")
	}

	// The entry must not be left running.
	if running, _ := syncQueueStore.GetRunning(ctx, "src-1"); running != nil {
		t.Errorf("entry left running after enqueue failure: %+v", running)
	}
}
