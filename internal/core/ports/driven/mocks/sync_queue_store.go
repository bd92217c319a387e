package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// MockSyncQueueStore is a mock implementation of SyncQueueStore for testing
type MockSyncQueueStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.SyncQueueEntry
	sources map[string]string // entry ID -> project ID

	// FailNextGetRunning makes the next GetRunning call return the
	// given error instead of looking anything up.
	FailNextGetRunning error
}

// NewMockSyncQueueStore creates a new MockSyncQueueStore
func NewMockSyncQueueStore() *MockSyncQueueStore {
	return &MockSyncQueueStore{
		entries: make(map[string]*domain.SyncQueueEntry),
		sources: make(map[string]string),
	}
}

// SaveForProject stores an entry and records the project its source belongs to.
func (m *MockSyncQueueStore) SaveForProject(entry *domain.SyncQueueEntry, projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	m.sources[entry.ID] = projectID
}

func (m *MockSyncQueueStore) Save(ctx context.Context, entry *domain.SyncQueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockSyncQueueStore) Get(ctx context.Context, id string) (*domain.SyncQueueEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (m *MockSyncQueueStore) GetRunning(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error) {
	m.mu.Lock()
	if m.FailNextGetRunning != nil {
		err := m.FailNextGetRunning
		m.FailNextGetRunning = nil
		m.mu.Unlock()
		return nil, err
	}
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.entries {
		if entry.SourceID == sourceID && entry.Status == domain.SyncStatusRunning {
			return entry, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSyncQueueStore) LatestBySource(ctx context.Context, sourceID string) (*domain.SyncQueueEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.SyncQueueEntry
	for _, entry := range m.entries {
		if entry.SourceID != sourceID {
			continue
		}
		if latest == nil || entry.CreatedAt.After(latest.CreatedAt) {
			latest = entry
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (m *MockSyncQueueStore) LatestByProject(ctx context.Context, projectID string) ([]*domain.SyncQueueEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]*domain.SyncQueueEntry)
	for id, entry := range m.entries {
		if m.sources[id] != "" && m.sources[id] != projectID {
			continue
		}
		current, ok := latest[entry.SourceID]
		if !ok || entry.CreatedAt.After(current.CreatedAt) {
			latest[entry.SourceID] = entry
		}
	}

	result := make([]*domain.SyncQueueEntry, 0, len(latest))
	for _, entry := range latest {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockSyncQueueStore) UpdateStatus(ctx context.Context, id string, status domain.SyncStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.ErrNotFound
	}
	entry.Status = status
	entry.Error = errMsg
	if entry.IsTerminal() {
		now := time.Now()
		entry.EndedAt = &now
	}
	return nil
}

func (m *MockSyncQueueStore) DeleteBySource(ctx context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.entries {
		if entry.SourceID == sourceID {
			delete(m.entries, id)
			delete(m.sources, id)
		}
	}
	return nil
}

// Helper methods for testing

func (m *MockSyncQueueStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.SyncQueueEntry)
	m.sources = make(map[string]string)
	m.FailNextGetRunning = nil
}

func (m *MockSyncQueueStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
