package driving

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// CreateSourceRequest represents a request to create a new source
type CreateSourceRequest struct {
	Type domain.SourceType `json:"type"`

	// Name is optional; when empty a unique name is generated from the
	// integration
	Name string            `json:"name,omitempty"`
	Data domain.SourceData `json:"data"`
}

// UpdateSourceRequest represents a request to update a source
type UpdateSourceRequest struct {
	Name *string            `json:"name,omitempty"`
	Data *domain.SourceData `json:"data,omitempty"`
}

// SourceService manages a project's data sources
type SourceService interface {
	// Create creates a new source. Connector-backed sources should be
	// created through the onboarding wizard instead, which also
	// provisions the gateway connection.
	Create(ctx context.Context, projectID string, req CreateSourceRequest) (*domain.Source, error)

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List retrieves all sources of a project
	List(ctx context.Context, projectID string) ([]*domain.Source, error)

	// ListWithSummary retrieves all sources of a project with file
	// counts and the latest sync run per source
	ListWithSummary(ctx context.Context, projectID string) ([]*domain.SourceSummary, error)

	// GenerateUniqueName returns a display name for a new source of the
	// given integration, collision-checked within the project
	GenerateUniqueName(ctx context.Context, projectID string, integrationID domain.IntegrationID) (string, error)

	// Update updates a source's name or settings payload
	Update(ctx context.Context, id string, req UpdateSourceRequest) (*domain.Source, error)

	// Delete deletes a source, its files and its sync history. The
	// gateway connection of connector sources is removed as well.
	Delete(ctx context.Context, id string) error
}
