package mocks

import (
	"context"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// MockConnectorClient is a mock implementation of ConnectorClient for testing.
// Behaviour can be overridden per test by setting the corresponding Fn fields.
type MockConnectorClient struct {
	mu          sync.Mutex
	connections map[string]*driven.Connection
	nextID      int

	CreateConnectionFn func(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error)
	DeleteConnectionFn func(ctx context.Context, connectionID string) error
	FetchFilesFn       func(ctx context.Context, connectionID, cursor string) ([]*domain.File, string, error)
}

// NewMockConnectorClient creates a new MockConnectorClient
func NewMockConnectorClient() *MockConnectorClient {
	return &MockConnectorClient{
		connections: make(map[string]*driven.Connection),
	}
}

func (m *MockConnectorClient) CreateConnection(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
	if m.CreateConnectionFn != nil {
		return m.CreateConnectionFn(ctx, projectID, integrationID, name, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	conn := &driven.Connection{
		ID:            domain.GenerateID(),
		IntegrationID: integrationID,
	}
	m.connections[conn.ID] = conn
	return conn, nil
}

func (m *MockConnectorClient) DeleteConnection(ctx context.Context, connectionID string) error {
	if m.DeleteConnectionFn != nil {
		return m.DeleteConnectionFn(ctx, connectionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.connections[connectionID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.connections, connectionID)
	return nil
}

func (m *MockConnectorClient) FetchFiles(ctx context.Context, connectionID, cursor string) ([]*domain.File, string, error) {
	if m.FetchFilesFn != nil {
		return m.FetchFilesFn(ctx, connectionID, cursor)
	}
	return nil, "", nil
}

// Helper methods for testing

func (m *MockConnectorClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections = make(map[string]*driven.Connection)
	m.CreateConnectionFn = nil
	m.DeleteConnectionFn = nil
	m.FetchFilesFn = nil
}

func (m *MockConnectorClient) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}
