package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*FileStore)(nil)

// FileStore implements driven.FileStore using PostgreSQL
type FileStore struct {
	db *DB
}

// NewFileStore creates a new FileStore
func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Save creates or updates a file. The write is a no-op (ErrNotFound)
// when the file's source does not belong to the given project.
func (s *FileStore) Save(ctx context.Context, projectID string, file *domain.File) error {
	metaJSON, err := json.Marshal(file.Meta)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO files (id, source_id, path, meta, updated_at, token_count)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE EXISTS (SELECT 1 FROM sources WHERE id = $2 AND project_id = $7)
		ON CONFLICT (id) DO UPDATE SET
			path = EXCLUDED.path,
			meta = EXCLUDED.meta,
			updated_at = EXCLUDED.updated_at,
			token_count = EXCLUDED.token_count
	`

	var tokenCount sql.NullInt64
	if file.TokenCount != nil {
		tokenCount = sql.NullInt64{Int64: int64(*file.TokenCount), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		file.ID,
		file.SourceID,
		file.Path,
		metaJSON,
		file.UpdatedAt,
		tokenCount,
		projectID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves a file by ID
func (s *FileStore) Get(ctx context.Context, id string) (*domain.File, error) {
	query := `
		SELECT id, source_id, path, meta, updated_at, token_count
		FROM files
		WHERE id = $1
	`
	return scanFile(s.db.QueryRowContext(ctx, query, id))
}

// ListPage retrieves one page of files. Sorting and source filters are
// applied here so pagination stays consistent under concurrent writes.
// The "name" sort orders by the extracted meta title, falling back to
// the path for legacy records.
func (s *FileStore) ListPage(ctx context.Context, q driven.FileQuery) ([]*domain.File, error) {
	orderBy := "COALESCE(NULLIF(f.meta->>'title', ''), f.path)"
	if q.SortColumn == driven.SortByUpdated {
		orderBy = "f.updated_at"
	}
	direction := "ASC"
	if q.SortDirection == driven.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.source_id, f.path, f.meta, f.updated_at, f.token_count
		FROM files f
		JOIN sources s ON s.id = f.source_id
		WHERE s.project_id = $1
		  AND (cardinality($2::text[]) = 0 OR f.source_id = ANY($2))
		ORDER BY %s %s, f.id
		LIMIT $3 OFFSET $4
	`, orderBy, direction)

	rows, err := s.db.QueryContext(ctx, query,
		q.ProjectID,
		pq.Array(q.SourceIDs),
		q.PageSize,
		q.Page*q.PageSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*domain.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// CountByProject returns the unfiltered file count of a project
func (s *FileStore) CountByProject(ctx context.Context, projectID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM files f
		JOIN sources s ON s.id = f.source_id
		WHERE s.project_id = $1
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(&count)
	return count, err
}

// CountFiltered returns the file count restricted to the query's sources
func (s *FileStore) CountFiltered(ctx context.Context, q driven.FileQuery) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM files f
		JOIN sources s ON s.id = f.source_id
		WHERE s.project_id = $1
		  AND (cardinality($2::text[]) = 0 OR f.source_id = ANY($2))
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, q.ProjectID, pq.Array(q.SourceIDs)).Scan(&count)
	return count, err
}

// DeleteBatch deletes files by ID
func (s *FileStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

// DeleteBySource deletes all files of a source
func (s *FileStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE source_id = $1`, sourceID)
	return err
}

// SumTokenCounts returns the total token count of processed files
// across a team
func (s *FileStore) SumTokenCounts(ctx context.Context, teamID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(f.token_count), 0)
		FROM files f
		JOIN sources s ON s.id = f.source_id
		JOIN projects p ON p.id = s.project_id
		WHERE p.team_id = $1
	`
	var sum int64
	err := s.db.QueryRowContext(ctx, query, teamID).Scan(&sum)
	return sum, err
}

// CountByTeam returns the total file count across a team
func (s *FileStore) CountByTeam(ctx context.Context, teamID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM files f
		JOIN sources s ON s.id = f.source_id
		JOIN projects p ON p.id = s.project_id
		WHERE p.team_id = $1
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, teamID).Scan(&count)
	return count, err
}

func scanFile(row rowScanner) (*domain.File, error) {
	var file domain.File
	var metaJSON []byte
	var tokenCount sql.NullInt64

	err := row.Scan(
		&file.ID,
		&file.SourceID,
		&file.Path,
		&metaJSON,
		&file.UpdatedAt,
		&tokenCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metaJSON, &file.Meta); err != nil {
		return nil, err
	}
	if tokenCount.Valid {
		n := int(tokenCount.Int64)
		file.TokenCount = &n
	}
	return &file, nil
}
