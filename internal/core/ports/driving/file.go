package driving

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// FileService exposes the indexed file collection
type FileService interface {
	// Get retrieves a file by ID
	Get(ctx context.Context, id string) (*domain.File, error)

	// ListPage retrieves one page of files; sorting and source filters
	// are applied by the backing store
	ListPage(ctx context.Context, q driven.FileQuery) ([]*domain.File, error)

	// Count returns the unfiltered file count of a project
	Count(ctx context.Context, projectID string) (int, error)

	// CountWithFilters returns the file count restricted to sources
	CountWithFilters(ctx context.Context, projectID string, sourceIDs []string) (int, error)

	// DeleteFiles deletes files by ID. Empty id lists are a no-op and
	// issue no store call.
	DeleteFiles(ctx context.Context, projectID string, ids []string) error
}

// UsageService exposes the team usage/quota snapshot
type UsageService interface {
	// Stats returns the current usage snapshot for a team
	Stats(ctx context.Context, teamID string) (*domain.UsageStats, error)
}
