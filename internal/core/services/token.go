package services

import (
	"context"
	"fmt"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// Ensure tokenService implements TokenService
var _ driving.TokenService = (*tokenService)(nil)

// tokenService implements the TokenService interface
type tokenService struct {
	tokenStore driven.TokenStore
}

// NewTokenService creates a new TokenService
func NewTokenService(tokenStore driven.TokenStore) driving.TokenService {
	return &tokenService{tokenStore: tokenStore}
}

// List retrieves all tokens of a project with decrypted values
func (s *tokenService) List(ctx context.Context, projectID string) ([]*domain.Token, error) {
	if projectID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.tokenStore.ListByProject(ctx, projectID)
}

// Create mints and persists a new token for a project
func (s *tokenService) Create(ctx context.Context, projectID, createdBy string) (*domain.Token, error) {
	if projectID == "" || createdBy == "" {
		return nil, domain.ErrInvalidInput
	}
	token := &domain.Token{
		ID:         domain.GenerateID(),
		ProjectID:  projectID,
		Value:      domain.GenerateKey(),
		CreatedBy:  createdBy,
		InsertedAt: time.Now(),
	}
	if err := s.tokenStore.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}
	return token, nil
}

// Delete deletes a token
func (s *tokenService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return s.tokenStore.Delete(ctx, id)
}
