package domain

import "time"

// SyncStatus represents the state of one sync run
type SyncStatus string

const (
	SyncStatusRunning  SyncStatus = "running"
	SyncStatusCanceled SyncStatus = "canceled"
	SyncStatusErrored  SyncStatus = "errored"
	SyncStatusComplete SyncStatus = "complete"
)

// SyncQueueEntry represents one historical or in-flight sync run for a
// source. A source with no entries has never been synced. At most one
// entry may be running per source at a time.
type SyncQueueEntry struct {
	ID        string     `json:"id"`
	SourceID  string     `json:"source_id"`
	Status    SyncStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// Error holds the failure reason when Status is errored
	Error string `json:"error,omitempty"`
}

// IsTerminal reports whether the run has ended
func (e *SyncQueueEntry) IsTerminal() bool {
	switch e.Status {
	case SyncStatusCanceled, SyncStatusErrored, SyncStatusComplete:
		return true
	}
	return false
}

// AnySyncRunning reports whether any entry in the list is running.
// The list is expected to hold the latest entry per source.
func AnySyncRunning(entries []*SyncQueueEntry) bool {
	for _, e := range entries {
		if e != nil && e.Status == SyncStatusRunning {
			return true
		}
	}
	return false
}

// LatestForSource returns the entry for the given source, or nil. The
// list is expected to hold the latest entry per source.
func LatestForSource(entries []*SyncQueueEntry, sourceID string) *SyncQueueEntry {
	for _, e := range entries {
		if e != nil && e.SourceID == sourceID {
			return e
		}
	}
	return nil
}
