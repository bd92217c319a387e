package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore implements driven.TokenStore using PostgreSQL. Token
// values are encrypted at rest and decrypted on the way out.
type TokenStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(db *DB, encryptor *SecretEncryptor) *TokenStore {
	return &TokenStore{db: db, encryptor: encryptor}
}

// Save persists a token, encrypting its value
func (s *TokenStore) Save(ctx context.Context, token *domain.Token) error {
	blob, err := s.encryptor.EncryptString(token.Value)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tokens (id, project_id, value, created_by, inserted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query,
		token.ID,
		token.ProjectID,
		blob,
		token.CreatedBy,
		token.InsertedAt,
	)
	return err
}

// ListByProject retrieves all tokens of a project with decrypted values
func (s *TokenStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Token, error) {
	query := `
		SELECT id, project_id, value, created_by, inserted_at
		FROM tokens
		WHERE project_id = $1
		ORDER BY inserted_at
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*domain.Token
	for rows.Next() {
		var token domain.Token
		var blob []byte
		if err := rows.Scan(&token.ID, &token.ProjectID, &blob, &token.CreatedBy, &token.InsertedAt); err != nil {
			return nil, err
		}
		value, err := s.encryptor.DecryptString(blob)
		if err != nil {
			return nil, err
		}
		token.Value = value
		tokens = append(tokens, &token)
	}
	return tokens, rows.Err()
}

// Delete deletes a token
func (s *TokenStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, id)
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

// Verify interface compliance
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore implements driven.ProjectStore using PostgreSQL
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a new ProjectStore
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// GetProject retrieves a project by ID
func (s *ProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT id, team_id, name, slug, created_at FROM projects WHERE id = $1`

	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.TeamID, &project.Name, &project.Slug, &project.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetTeam retrieves a team by ID
func (s *ProjectStore) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT id, name, slug, token_allowance, created_at FROM teams WHERE id = $1`

	var team domain.Team
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Slug, &team.TokenAllowance, &team.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListProjectsByTeam retrieves all projects of a team
func (s *ProjectStore) ListProjectsByTeam(ctx context.Context, teamID string) ([]*domain.Project, error) {
	query := `SELECT id, team_id, name, slug, created_at FROM projects WHERE team_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(&project.ID, &project.TeamID, &project.Name, &project.Slug, &project.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}
