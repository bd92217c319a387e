package services

import (
	"context"
	"fmt"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// Ensure fileService implements FileService
var _ driving.FileService = (*fileService)(nil)

// fileService implements the FileService interface
type fileService struct {
	fileStore driven.FileStore
}

// NewFileService creates a new FileService
func NewFileService(fileStore driven.FileStore) driving.FileService {
	return &fileService{fileStore: fileStore}
}

// Get retrieves a file by ID
func (s *fileService) Get(ctx context.Context, id string) (*domain.File, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.fileStore.Get(ctx, id)
}

// ListPage retrieves one page of files
func (s *fileService) ListPage(ctx context.Context, q driven.FileQuery) ([]*domain.File, error) {
	if q.PageSize <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.fileStore.ListPage(ctx, q)
}

// Count returns the unfiltered file count of a project
func (s *fileService) Count(ctx context.Context, projectID string) (int, error) {
	return s.fileStore.CountByProject(ctx, projectID)
}

// CountWithFilters returns the file count restricted to sources
func (s *fileService) CountWithFilters(ctx context.Context, projectID string, sourceIDs []string) (int, error) {
	return s.fileStore.CountFiltered(ctx, driven.FileQuery{
		ProjectID: projectID,
		SourceIDs: sourceIDs,
	})
}

// DeleteFiles deletes files by ID. Empty id lists are a no-op and
// issue no store call.
func (s *fileService) DeleteFiles(ctx context.Context, projectID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if projectID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.fileStore.DeleteBatch(ctx, ids); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	return nil
}

// Ensure usageService implements UsageService
var _ driving.UsageService = (*usageService)(nil)

// usageService implements the UsageService interface
type usageService struct {
	fileStore    driven.FileStore
	projectStore driven.ProjectStore
}

// NewUsageService creates a new UsageService
func NewUsageService(fileStore driven.FileStore, projectStore driven.ProjectStore) driving.UsageService {
	return &usageService{
		fileStore:    fileStore,
		projectStore: projectStore,
	}
}

// Stats returns the current usage snapshot for a team
func (s *usageService) Stats(ctx context.Context, teamID string) (*domain.UsageStats, error) {
	team, err := s.projectStore.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	numFiles, err := s.fileStore.CountByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	numTokens, err := s.fileStore.SumTokenCounts(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &domain.UsageStats{
		TeamID:         teamID,
		NumFiles:       numFiles,
		NumTokens:      numTokens,
		TokenAllowance: team.TokenAllowance,
	}, nil
}
