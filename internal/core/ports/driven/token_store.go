package driven

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// TokenStore handles API token persistence. Values are encrypted at
// rest and returned decrypted.
type TokenStore interface {
	// Save persists a token
	Save(ctx context.Context, token *domain.Token) error

	// ListByProject retrieves all tokens of a project, decrypted
	ListByProject(ctx context.Context, projectID string) ([]*domain.Token, error)

	// Delete deletes a token
	Delete(ctx context.Context, id string) error
}

// ProjectStore handles project and team lookups
type ProjectStore interface {
	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// GetTeam retrieves a team by ID
	GetTeam(ctx context.Context, id string) (*domain.Team, error)

	// ListProjectsByTeam retrieves all projects of a team
	ListProjectsByTeam(ctx context.Context, teamID string) ([]*domain.Project, error)
}

// UserStore handles dashboard user persistence
type UserStore interface {
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Save persists a user
	Save(ctx context.Context, user *domain.User) error
}
