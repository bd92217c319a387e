package driven

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// SortColumn identifies a sortable file list column
type SortColumn string

const (
	SortByName    SortColumn = "name"
	SortByUpdated SortColumn = "updated"
)

// SortDirection is the requested sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FileQuery keys one page of the file list. Sorting and filtering are
// server-driven: the store applies them, not the caller.
type FileQuery struct {
	ProjectID string

	// Page is the zero-based page index
	Page     int
	PageSize int

	SortColumn    SortColumn
	SortDirection SortDirection

	// SourceIDs restricts the list to these sources; empty means all
	SourceIDs []string
}

// FileStore handles file persistence (PostgreSQL)
type FileStore interface {
	// Save creates or updates a file
	Save(ctx context.Context, projectID string, file *domain.File) error

	// Get retrieves a file by ID
	Get(ctx context.Context, id string) (*domain.File, error)

	// ListPage retrieves one page of files for the query
	ListPage(ctx context.Context, q FileQuery) ([]*domain.File, error)

	// CountByProject returns the unfiltered file count of a project
	CountByProject(ctx context.Context, projectID string) (int, error)

	// CountFiltered returns the file count for the query's project and
	// source filters; paging and sorting fields are ignored
	CountFiltered(ctx context.Context, q FileQuery) (int, error)

	// DeleteBatch deletes multiple files by ID
	DeleteBatch(ctx context.Context, ids []string) error

	// DeleteBySource deletes all files of a source
	DeleteBySource(ctx context.Context, sourceID string) error

	// SumTokenCounts returns the total token count of processed files
	// across a team
	SumTokenCounts(ctx context.Context, teamID string) (int64, error)

	// CountByTeam returns the total file count across a team
	CountByTeam(ctx context.Context, teamID string) (int, error)
}
