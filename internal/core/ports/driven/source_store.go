package driven

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// SourceStore handles source persistence (PostgreSQL)
type SourceStore interface {
	// Save creates or updates a source
	Save(ctx context.Context, source *domain.Source) error

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// GetByName retrieves a source by display name within a project
	GetByName(ctx context.Context, projectID, name string) (*domain.Source, error)

	// ListByProject retrieves all sources of a project
	ListByProject(ctx context.Context, projectID string) ([]*domain.Source, error)

	// Delete deletes a source
	Delete(ctx context.Context, id string) error
}
