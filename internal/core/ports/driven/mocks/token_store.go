package mocks

import (
	"context"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// MockTokenStore is a mock implementation of TokenStore for testing
type MockTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token
}

// NewMockTokenStore creates a new MockTokenStore
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{
		tokens: make(map[string]*domain.Token),
	}
}

func (m *MockTokenStore) Save(ctx context.Context, token *domain.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = token
	return nil
}

func (m *MockTokenStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Token
	for _, token := range m.tokens {
		if token.ProjectID == projectID {
			result = append(result, token)
		}
	}
	return result, nil
}

func (m *MockTokenStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tokens, id)
	return nil
}

// Helper methods for testing

func (m *MockTokenStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = make(map[string]*domain.Token)
}

func (m *MockTokenStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// MockProjectStore is a mock implementation of ProjectStore for testing
type MockProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
	teams    map[string]*domain.Team
}

// NewMockProjectStore creates a new MockProjectStore
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		projects: make(map[string]*domain.Project),
		teams:    make(map[string]*domain.Team),
	}
}

func (m *MockProjectStore) AddProject(project *domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.ID] = project
}

func (m *MockProjectStore) AddTeam(team *domain.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = team
}

func (m *MockProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (m *MockProjectStore) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	team, ok := m.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return team, nil
}

func (m *MockProjectStore) ListProjectsByTeam(ctx context.Context, teamID string) ([]*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Project
	for _, project := range m.projects {
		if project.TeamID == teamID {
			result = append(result, project)
		}
	}
	return result, nil
}

func (m *MockProjectStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = make(map[string]*domain.Project)
	m.teams = make(map[string]*domain.Team)
}

// MockUserStore is a mock implementation of UserStore for testing
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User // keyed by email
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *MockUserStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]*domain.User)
}
