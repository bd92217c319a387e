package domain

import (
	"testing"
	"time"
)

func TestAnySyncRunning(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		entries []*SyncQueueEntry
		want    bool
	}{
		{"empty", nil, false},
		{
			"one running",
			[]*SyncQueueEntry{
				{ID: "q1", SourceID: "s1", Status: SyncStatusComplete, EndedAt: &now},
				{ID: "q2", SourceID: "s2", Status: SyncStatusRunning},
			},
			true,
		},
		{
			"all terminal",
			[]*SyncQueueEntry{
				{ID: "q1", SourceID: "s1", Status: SyncStatusErrored, EndedAt: &now},
				{ID: "q2", SourceID: "s2", Status: SyncStatusCanceled, EndedAt: &now},
			},
			false,
		},
		{"nil entry ignored", []*SyncQueueEntry{nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnySyncRunning(tt.entries); got != tt.want {
				t.Errorf("AnySyncRunning() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLatestForSource(t *testing.T) {
	entries := []*SyncQueueEntry{
		{ID: "q1", SourceID: "s1", Status: SyncStatusRunning},
		{ID: "q2", SourceID: "s2", Status: SyncStatusComplete},
	}

	if got := LatestForSource(entries, "s2"); got == nil || got.ID != "q2" {
		t.Errorf("LatestForSource(s2) = %v, want q2", got)
	}
	if got := LatestForSource(entries, "missing"); got != nil {
		t.Errorf("LatestForSource(missing) = %v, want nil", got)
	}
}

func TestSyncQueueEntryIsTerminal(t *testing.T) {
	tests := []struct {
		status SyncStatus
		want   bool
	}{
		{SyncStatusRunning, false},
		{SyncStatusCanceled, true},
		{SyncStatusErrored, true},
		{SyncStatusComplete, true},
	}

	for _, tt := range tests {
		e := &SyncQueueEntry{Status: tt.status}
		if got := e.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
