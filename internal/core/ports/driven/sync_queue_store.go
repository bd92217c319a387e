package driven

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// SyncQueueStore handles sync run persistence (PostgreSQL)
type SyncQueueStore interface {
	// Save creates or updates a sync queue entry
	Save(ctx context.Context, entry *domain.SyncQueueEntry) error

	// Get retrieves an entry by ID
	Get(ctx context.Context, id string) (*domain.SyncQueueEntry, error)

	// GetRunning retrieves the running entry for a source, if any
	GetRunning(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error)

	// LatestBySource retrieves the most recent entry for a source
	LatestBySource(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error)

	// LatestByProject returns the latest entry per source for all
	// sources of a project
	LatestByProject(ctx context.Context, projectID string) ([]*domain.SyncQueueEntry, error)

	// UpdateStatus transitions an entry's status, setting the end
	// timestamp for terminal statuses
	UpdateStatus(ctx context.Context, id string, status domain.SyncStatus, errMsg string) error

	// DeleteBySource deletes all entries of a source
	DeleteBySource(ctx context.Context, sourceID string) error
}
