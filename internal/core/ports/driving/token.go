package driving

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// TokenService manages project API tokens
type TokenService interface {
	// List retrieves all tokens of a project with decrypted values
	List(ctx context.Context, projectID string) ([]*domain.Token, error)

	// Create mints and persists a new token for a project
	Create(ctx context.Context, projectID, createdBy string) (*domain.Token, error)

	// Delete deletes a token
	Delete(ctx context.Context, id string) error
}

// AuthService authenticates dashboard users
type AuthService interface {
	// Authenticate verifies credentials and issues a bearer token
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken parses and validates a bearer token
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
