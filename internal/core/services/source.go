package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// Ensure sourceService implements SourceService
var _ driving.SourceService = (*sourceService)(nil)

// sourceService implements the SourceService interface
type sourceService struct {
	sourceStore    driven.SourceStore
	fileStore      driven.FileStore
	syncQueueStore driven.SyncQueueStore
	connector      driven.ConnectorClient
}

// NewSourceService creates a new SourceService
func NewSourceService(
	sourceStore driven.SourceStore,
	fileStore driven.FileStore,
	syncQueueStore driven.SyncQueueStore,
	connector driven.ConnectorClient,
) driving.SourceService {
	return &sourceService{
		sourceStore:    sourceStore,
		fileStore:      fileStore,
		syncQueueStore: syncQueueStore,
		connector:      connector,
	}
}

// Create creates a new source
func (s *sourceService) Create(ctx context.Context, projectID string, req driving.CreateSourceRequest) (*domain.Source, error) {
	if projectID == "" || req.Type == "" {
		return nil, domain.ErrInvalidInput
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		if req.Data.IntegrationID == "" {
			return nil, domain.ErrInvalidInput
		}
		generated, err := s.GenerateUniqueName(ctx, projectID, req.Data.IntegrationID)
		if err != nil {
			return nil, err
		}
		name = generated
	} else {
		existing, _ := s.sourceStore.GetByName(ctx, projectID, name)
		if existing != nil {
			return nil, domain.ErrAlreadyExists
		}
	}

	now := time.Now()
	source := &domain.Source{
		ID:        domain.GenerateID(),
		ProjectID: projectID,
		Type:      req.Type,
		Name:      name,
		Data:      req.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("saving source: %w", err)
	}
	return source, nil
}

// Get retrieves a source by ID
func (s *sourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.sourceStore.Get(ctx, id)
}

// List retrieves all sources of a project
func (s *sourceService) List(ctx context.Context, projectID string) ([]*domain.Source, error) {
	return s.sourceStore.ListByProject(ctx, projectID)
}

// ListWithSummary retrieves all sources of a project annotated with
// file counts and their latest sync run
func (s *sourceService) ListWithSummary(ctx context.Context, projectID string) ([]*domain.SourceSummary, error) {
	sources, err := s.sourceStore.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	latest, err := s.syncQueueStore.LatestByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.SourceSummary, 0, len(sources))
	for _, source := range sources {
		count, err := s.fileStore.CountFiltered(ctx, driven.FileQuery{
			ProjectID: projectID,
			SourceIDs: []string{source.ID},
		})
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &domain.SourceSummary{
			Source:    source,
			FileCount: count,
			SyncQueue: domain.LatestForSource(latest, source.ID),
		})
	}
	return summaries, nil
}

// GenerateUniqueName returns a display name for a new source of the
// given integration, collision-checked within the project
func (s *sourceService) GenerateUniqueName(ctx context.Context, projectID string, integrationID domain.IntegrationID) (string, error) {
	sources, err := s.sourceStore.ListByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	existing := make([]string, 0, len(sources))
	for _, source := range sources {
		existing = append(existing, source.Name)
	}
	return domain.UniqueSourceName(integrationID, existing), nil
}

// Update updates a source's name or settings payload
func (s *sourceService) Update(ctx context.Context, id string, req driving.UpdateSourceRequest) (*domain.Source, error) {
	source, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		if name != source.Name {
			existing, _ := s.sourceStore.GetByName(ctx, source.ProjectID, name)
			if existing != nil {
				return nil, domain.ErrAlreadyExists
			}
		}
		source.Name = name
	}
	if req.Data != nil {
		source.Data = *req.Data
	}
	source.UpdatedAt = time.Now()

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("saving source: %w", err)
	}
	return source, nil
}

// Delete deletes a source with its files and sync history. Deletion is
// capability-gated on the source type.
func (s *sourceService) Delete(ctx context.Context, id string) error {
	source, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanDeleteSource(source.Type) {
		return domain.ErrSourceNotDeletable
	}

	if err := s.fileStore.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	if err := s.syncQueueStore.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("deleting sync history: %w", err)
	}
	if source.Data.ConnectionID != "" {
		// Best effort: the gateway connection may already be gone.
		_ = s.connector.DeleteConnection(ctx, source.Data.ConnectionID)
	}
	return s.sourceStore.Delete(ctx, id)
}
