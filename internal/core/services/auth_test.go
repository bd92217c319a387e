package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven/mocks"
)

func seedUser(t *testing.T, userStore *mocks.MockUserStore, authAdapter *mocks.MockAuthAdapter, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := authAdapter.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &domain.User{
		ID:           domain.GenerateID(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         domain.RoleAdmin,
		TeamID:       "team-1",
		Active:       active,
		CreatedAt:    time.Now(),
	}
	if err := userStore.Save(context.Background(), user); err != nil {
		t.Fatalf("saving user: %v", err)
	}
	return user
}

func TestAuthService_Authenticate(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	authAdapter := mocks.NewMockAuthAdapter()
	svc := NewAuthService(userStore, authAdapter)
	ctx := context.Background()

	seedUser(t, userStore, authAdapter, "admin@acme.com", "correct-horse", true)
	seedUser(t, userStore, authAdapter, "gone@acme.com", "whatever", false)

	tests := []struct {
		name    string
		req     domain.LoginRequest
		wantErr error
	}{
		{
			name: "valid credentials",
			req:  domain.LoginRequest{Email: "admin@acme.com", Password: "correct-horse"},
		},
		{
			name:    "wrong password",
			req:     domain.LoginRequest{Email: "admin@acme.com", Password: "wrong"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "unknown user",
			req:     domain.LoginRequest{Email: "nobody@acme.com", Password: "x"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "inactive user",
			req:     domain.LoginRequest{Email: "gone@acme.com", Password: "whatever"},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "missing fields",
			req:     domain.LoginRequest{},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Authenticate(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token")
			}
			if resp.User == nil || resp.User.Email != tt.req.Email {
				t.Errorf("unexpected user: %+v", resp.User)
			}
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	authAdapter := mocks.NewMockAuthAdapter()
	svc := NewAuthService(userStore, authAdapter)
	ctx := context.Background()

	user := seedUser(t, userStore, authAdapter, "admin@acme.com", "correct-horse", true)

	resp, err := svc.Authenticate(ctx, domain.LoginRequest{Email: "admin@acme.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	authCtx, err := svc.ValidateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.UserID != user.ID || authCtx.TeamID != "team-1" {
		t.Errorf("unexpected auth context: %+v", authCtx)
	}
	if !authCtx.IsAdmin() {
		t.Error("expected admin role")
	}

	if _, err := svc.ValidateToken(ctx, "bogus"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := svc.ValidateToken(ctx, ""); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for empty token, got %v", err)
	}
}
