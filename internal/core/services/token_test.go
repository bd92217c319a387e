package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven/mocks"
)

func TestTokenService_CreateAndList(t *testing.T) {
	tokenStore := mocks.NewMockTokenStore()
	svc := NewTokenService(tokenStore)
	ctx := context.Background()

	token, err := svc.Create(ctx, "proj-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(token.Value, "sk_") {
		t.Errorf("expected sk_ prefix, got %q", token.Value)
	}
	if token.CreatedBy != "user-1" {
		t.Errorf("expected creator user-1, got %q", token.CreatedBy)
	}

	other, err := svc.Create(ctx, "proj-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Value == token.Value {
		t.Error("token values must be unique")
	}

	tokens, err := svc.List(ctx, "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(tokens))
	}

	if _, err := svc.Create(ctx, "", "user-1"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenService_Delete(t *testing.T) {
	tokenStore := mocks.NewMockTokenStore()
	svc := NewTokenService(tokenStore)
	ctx := context.Background()

	token, err := svc.Create(ctx, "proj-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, token.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, token.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
