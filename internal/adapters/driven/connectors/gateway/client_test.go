package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

func TestClient_CreateConnection(t *testing.T) {
	var gotAuth string
	var gotReq createConnectionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/connections" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":             "conn-1",
			"integration_id": gotReq.IntegrationID,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	conn, err := client.CreateConnection(context.Background(), "proj-1",
		domain.IntegrationID("salesforce-knowledge"), "Salesforce Knowledge",
		map[string]any{"instance_url": "https://acme.my.salesforce.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conn.ID != "conn-1" {
		t.Errorf("expected connection conn-1, got %s", conn.ID)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotReq.ProjectID != "proj-1" {
		t.Errorf("expected project proj-1, got %s", gotReq.ProjectID)
	}
	if gotReq.Payload["instance_url"] != "https://acme.my.salesforce.com" {
		t.Errorf("expected instance URL in payload, got %v", gotReq.Payload)
	}
}

func TestClient_CreateConnection_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "callback_err",
			"message": "authorization flow dismissed",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	_, err := client.CreateConnection(context.Background(), "proj-1",
		domain.IntegrationID("salesforce-knowledge"), "Salesforce Knowledge", nil)

	if !errors.Is(err, domain.ErrAuthorizationCanceled) {
		t.Errorf("expected ErrAuthorizationCanceled, got %v", err)
	}
}

func TestClient_CreateConnection_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "invalid_payload",
			"message": "instance_url is required",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	_, err := client.CreateConnection(context.Background(), "proj-1",
		domain.IntegrationID("salesforce-knowledge"), "Salesforce Knowledge", nil)

	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrAuthorizationCanceled) {
		t.Error("generic gateway errors must not map to cancellation")
	}
}

func TestClient_DeleteConnection_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	if err := client.DeleteConnection(context.Background(), "conn-unknown"); err != nil {
		t.Errorf("expected missing connection to be tolerated, got %v", err)
	}
}

func TestClient_FetchFiles_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/connections/conn-1/files" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		switch r.URL.Query().Get("cursor") {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"files": []map[string]any{
					{"id": "f-1", "path": "ka/article-1", "meta": map[string]any{"title": "Reset your password"}},
				},
				"next_cursor": "page-2",
			})
		case "page-2":
			json.NewEncoder(w).Encode(map[string]any{
				"files": []map[string]any{
					{"id": "f-2", "path": "ka/article-2"},
				},
				"next_cursor": "",
			})
		default:
			t.Errorf("unexpected cursor: %s", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	ctx := context.Background()

	files, next, err := client.FetchFiles(ctx, "conn-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].ID != "f-1" {
		t.Fatalf("unexpected first page: %+v", files)
	}
	if domain.FileTitle(files[0]) != "Reset your password" {
		t.Errorf("expected title from meta, got %s", domain.FileTitle(files[0]))
	}
	if next != "page-2" {
		t.Fatalf("expected cursor page-2, got %q", next)
	}

	files, next, err = client.FetchFiles(ctx, "conn-1", next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].ID != "f-2" {
		t.Fatalf("unexpected second page: %+v", files)
	}
	if next != "" {
		t.Errorf("expected exhausted cursor, got %q", next)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"files": []any{}, "next_cursor": ""})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	_, _, err := client.FetchFiles(context.Background(), "conn-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected one retry, got %d calls", calls)
	}
}
