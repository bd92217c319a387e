package driving

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// SyncService manages sync runs for a project's sources
type SyncService interface {
	// TriggerSync enqueues a sync for each given source and returns the
	// created queue entries. Sources whose type cannot sync are
	// skipped. Returns domain.ErrSyncInProgress for a source that
	// already has a running entry.
	TriggerSync(ctx context.Context, projectID string, sources []*domain.Source) ([]*domain.SyncQueueEntry, error)

	// StopSync requests cancellation of the running sync for a source.
	// Returns domain.ErrSyncNotRunning when no sync is running.
	StopSync(ctx context.Context, sourceID string) error

	// CurrentStatus returns the status of the latest sync run for a
	// source; empty when the source has never been synced.
	CurrentStatus(ctx context.Context, sourceID string) (domain.SyncStatus, error)

	// LatestByProject returns the latest queue entry per source
	LatestByProject(ctx context.Context, projectID string) ([]*domain.SyncQueueEntry, error)
}
