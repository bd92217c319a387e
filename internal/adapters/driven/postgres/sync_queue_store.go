package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncQueueStore = (*SyncQueueStore)(nil)

// SyncQueueStore implements driven.SyncQueueStore using PostgreSQL
type SyncQueueStore struct {
	db *DB
}

// NewSyncQueueStore creates a new SyncQueueStore
func NewSyncQueueStore(db *DB) *SyncQueueStore {
	return &SyncQueueStore{db: db}
}

// Save creates or updates a sync queue entry
func (s *SyncQueueStore) Save(ctx context.Context, entry *domain.SyncQueueEntry) error {
	query := `
		INSERT INTO sync_queue (id, source_id, status, created_at, ended_at, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			ended_at = EXCLUDED.ended_at,
			error = EXCLUDED.error
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.SourceID,
		string(entry.Status),
		entry.CreatedAt,
		NullTime(entry.EndedAt),
		entry.Error,
	)
	return err
}

// Get retrieves an entry by ID
func (s *SyncQueueStore) Get(ctx context.Context, id string) (*domain.SyncQueueEntry, error) {
	query := `
		SELECT id, source_id, status, created_at, ended_at, error
		FROM sync_queue
		WHERE id = $1
	`
	return scanSyncQueueEntry(s.db.QueryRowContext(ctx, query, id))
}

// GetRunning retrieves the running entry for a source, if any
func (s *SyncQueueStore) GetRunning(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error) {
	query := `
		SELECT id, source_id, status, created_at, ended_at, error
		FROM sync_queue
		WHERE source_id = $1 AND status = 'running'
	`
	return scanSyncQueueEntry(s.db.QueryRowContext(ctx, query, sourceID))
}

// LatestBySource retrieves the most recent entry for a source
func (s *SyncQueueStore) LatestBySource(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error) {
	query := `
		SELECT id, source_id, status, created_at, ended_at, error
		FROM sync_queue
		WHERE source_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanSyncQueueEntry(s.db.QueryRowContext(ctx, query, sourceID))
}

// LatestByProject returns the latest entry per source for all sources
// of a project
func (s *SyncQueueStore) LatestByProject(ctx context.Context, projectID string) ([]*domain.SyncQueueEntry, error) {
	query := `
		SELECT DISTINCT ON (q.source_id)
		       q.id, q.source_id, q.status, q.created_at, q.ended_at, q.error
		FROM sync_queue q
		JOIN sources s ON s.id = q.source_id
		WHERE s.project_id = $1
		ORDER BY q.source_id, q.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.SyncQueueEntry
	for rows.Next() {
		entry, err := scanSyncQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpdateStatus transitions an entry's status, setting the end timestamp
// for terminal statuses
func (s *SyncQueueStore) UpdateStatus(ctx context.Context, id string, status domain.SyncStatus, errMsg string) error {
	query := `
		UPDATE sync_queue
		SET status = $2,
		    error = $3,
		    ended_at = CASE WHEN $2 IN ('canceled', 'errored', 'complete') THEN now() ELSE ended_at END
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, string(status), errMsg)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteBySource deletes all entries of a source
func (s *SyncQueueStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE source_id = $1`, sourceID)
	return err
}

func scanSyncQueueEntry(row rowScanner) (*domain.SyncQueueEntry, error) {
	var entry domain.SyncQueueEntry
	var endedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.SourceID,
		&entry.Status,
		&entry.CreatedAt,
		&endedAt,
		&entry.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.EndedAt = TimePtr(endedAt)
	return &entry, nil
}
