package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// MockFileStore is a mock implementation of FileStore for testing.
// It applies the same paging, sorting and filtering semantics as the
// real store so service tests can exercise them in memory.
type MockFileStore struct {
	mu       sync.RWMutex
	files    map[string]*domain.File
	projects map[string]string // file ID -> project ID, via source ownership

	// FailNextDeleteBatch makes the next DeleteBatch call return
	// the given error instead of deleting anything.
	FailNextDeleteBatch error

	listPageCalls    int
	deleteBatchCalls int
}

// NewMockFileStore creates a new MockFileStore
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{
		files:    make(map[string]*domain.File),
		projects: make(map[string]string),
	}
}

// SaveForProject stores a file and records which project it belongs to.
// The real store resolves projects through the file's source.
func (m *MockFileStore) SaveForProject(file *domain.File, projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file.ID] = file
	m.projects[file.ID] = projectID
}

func (m *MockFileStore) Save(ctx context.Context, projectID string, file *domain.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file.ID] = file
	m.projects[file.ID] = projectID
	return nil
}

func (m *MockFileStore) Get(ctx context.Context, id string) (*domain.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	file, ok := m.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

func (m *MockFileStore) ListPage(ctx context.Context, query driven.FileQuery) ([]*domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listPageCalls++

	matched := m.filtered(query)

	asc := query.SortDirection != driven.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch query.SortColumn {
		case driven.SortByUpdated:
			less = matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		default:
			less = strings.ToLower(domain.FileTitle(matched[i])) < strings.ToLower(domain.FileTitle(matched[j]))
		}
		if asc {
			return less
		}
		return !less
	})

	start := query.Page * query.PageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + query.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *MockFileStore) CountByProject(ctx context.Context, projectID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for id := range m.files {
		if m.projects[id] == projectID {
			count++
		}
	}
	return count, nil
}

func (m *MockFileStore) CountFiltered(ctx context.Context, query driven.FileQuery) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filtered(query)), nil
}

func (m *MockFileStore) DeleteBatch(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteBatchCalls++
	if m.FailNextDeleteBatch != nil {
		err := m.FailNextDeleteBatch
		m.FailNextDeleteBatch = nil
		return err
	}
	for _, id := range ids {
		delete(m.files, id)
		delete(m.projects, id)
	}
	return nil
}

func (m *MockFileStore) DeleteBySource(ctx context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, file := range m.files {
		if file.SourceID == sourceID {
			delete(m.files, id)
			delete(m.projects, id)
		}
	}
	return nil
}

func (m *MockFileStore) SumTokenCounts(ctx context.Context, teamID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, file := range m.files {
		if file.TokenCount != nil {
			sum += int64(*file.TokenCount)
		}
	}
	return sum, nil
}

func (m *MockFileStore) CountByTeam(ctx context.Context, teamID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files), nil
}

// filtered must be called with the lock held.
func (m *MockFileStore) filtered(query driven.FileQuery) []*domain.File {
	var matched []*domain.File
	for id, file := range m.files {
		if query.ProjectID != "" && m.projects[id] != query.ProjectID {
			continue
		}
		if len(query.SourceIDs) > 0 {
			found := false
			for _, sid := range query.SourceIDs {
				if file.SourceID == sid {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, file)
	}
	return matched
}

// Helper methods for testing

func (m *MockFileStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string]*domain.File)
	m.projects = make(map[string]string)
	m.FailNextDeleteBatch = nil
	m.listPageCalls = 0
	m.deleteBatchCalls = 0
}

// ListPageCalls returns how many times ListPage has been called.
func (m *MockFileStore) ListPageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listPageCalls
}

// DeleteBatchCalls returns how many times DeleteBatch has been called.
func (m *MockFileStore) DeleteBatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteBatchCalls
}

func (m *MockFileStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
