package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{})

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/sources", nil)
	rr := httptest.NewRecorder()

	mw.Authenticate(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			return nil, domain.ErrTokenInvalid
		},
	})

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/sources", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rr := httptest.NewRecorder()

	mw.Authenticate(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			return nil, domain.ErrTokenExpired
		},
	})

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/sources", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rr := httptest.NewRecorder()

	mw.Authenticate(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_InjectsAuthContext(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			return &domain.AuthContext{UserID: "user-1", Role: domain.RoleMember}, nil
		},
	})

	var gotCtx *domain.AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/sources", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	mw.Authenticate(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotCtx == nil || gotCtx.UserID != "user-1" {
		t.Errorf("expected auth context for user-1, got %+v", gotCtx)
	}
}

func TestRequireAdmin_Member(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{})

	req := httptest.NewRequest("DELETE", "/api/v1/sources/src-1", nil)
	ctx := context.WithValue(req.Context(), authContextKey, &domain.AuthContext{UserID: "user-1", Role: domain.RoleMember})
	rr := httptest.NewRecorder()

	mw.RequireAdmin(okHandler()).ServeHTTP(rr, req.WithContext(ctx))

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestRequireAdmin_Admin(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthService{})

	req := httptest.NewRequest("DELETE", "/api/v1/sources/src-1", nil)
	ctx := context.WithValue(req.Context(), authContextKey, &domain.AuthContext{UserID: "user-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	mw.RequireAdmin(okHandler()).ServeHTTP(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCORS_Headers(t *testing.T) {
	mw := NewCORSMiddleware()

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/files", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()

	mw.Handler(okHandler()).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != "x-markprompt-data, x-markprompt-debug-info" {
		t.Errorf("unexpected exposed headers: %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	mw := NewCORSMiddleware()

	req := httptest.NewRequest("OPTIONS", "/api/v1/projects/proj-1/files", nil)
	rr := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	mw.Handler(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
}

func TestRecovery(t *testing.T) {
	mw := NewRecoveryMiddleware(testLogger())

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/api/v1/projects/proj-1/files", nil)
	rr := httptest.NewRecorder()

	mw.Handler(panicking).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	mw := NewLoggingMiddleware(testLogger())

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	mw.Handler(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}
