package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore implements driven.SourceStore using PostgreSQL
type SourceStore struct {
	db *DB
}

// NewSourceStore creates a new SourceStore
func NewSourceStore(db *DB) *SourceStore {
	return &SourceStore{db: db}
}

// Save creates or updates a source
func (s *SourceStore) Save(ctx context.Context, source *domain.Source) error {
	dataJSON, err := json.Marshal(source.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sources (id, project_id, type, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		source.ID,
		source.ProjectID,
		string(source.Type),
		source.Name,
		dataJSON,
		source.CreatedAt,
		source.UpdatedAt,
	)
	return err
}

// Get retrieves a source by ID
func (s *SourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	query := `
		SELECT id, project_id, type, name, data, created_at, updated_at
		FROM sources
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a source by its project-unique name
func (s *SourceStore) GetByName(ctx context.Context, projectID, name string) (*domain.Source, error) {
	query := `
		SELECT id, project_id, type, name, data, created_at, updated_at
		FROM sources
		WHERE project_id = $1 AND name = $2
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, projectID, name))
}

// ListByProject retrieves all sources of a project
func (s *SourceStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Source, error) {
	query := `
		SELECT id, project_id, type, name, data, created_at, updated_at
		FROM sources
		WHERE project_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		source, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// Delete deletes a source; dependent files and sync history are removed
// by the schema's cascade rules
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SourceStore) scanOne(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var dataJSON []byte

	err := row.Scan(
		&source.ID,
		&source.ProjectID,
		&source.Type,
		&source.Name,
		&dataJSON,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dataJSON, &source.Data); err != nil {
		return nil, err
	}
	return &source, nil
}
