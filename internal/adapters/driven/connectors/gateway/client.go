// Package gateway is the HTTP client for the OAuth connector gateway.
// The gateway runs the authorization flow and stores integration
// tokens; this client provisions connections and pulls file listings
// through them.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

var _ driven.ConnectorClient = (*Client)(nil)

// errCodeCallback is returned by the gateway when the user dismissed
// the authorization popup instead of completing it.
const errCodeCallback = "callback_err"

// Client talks to the connector gateway API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
}

// NewClient creates a gateway client. The API key authenticates this
// backend to the gateway.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		// Authorization flows wait on user interaction, so the
		// client timeout is generous.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		maxRetries: 3,
	}
}

type createConnectionRequest struct {
	ProjectID     string         `json:"project_id"`
	IntegrationID string         `json:"integration_id"`
	Name          string         `json:"name"`
	Payload       map[string]any `json:"payload,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateConnection registers a connection, running the authorization
// flow on the gateway side.
func (c *Client) CreateConnection(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
	body, err := json.Marshal(createConnectionRequest{
		ProjectID:     projectID,
		IntegrationID: string(integrationID),
		Name:          name,
		Payload:       payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling connection request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/connections", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var conn driven.Connection
	if err := json.NewDecoder(resp.Body).Decode(&conn); err != nil {
		return nil, fmt.Errorf("decoding connection: %w", err)
	}
	return &conn, nil
}

// DeleteConnection removes a connection. Deleting a connection the
// gateway no longer knows about is not an error.
func (c *Client) DeleteConnection(ctx context.Context, connectionID string) error {
	path := "/v1/connections/" + url.PathEscape(connectionID)
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	resp.Body.Close()
	return nil
}

type listFilesResponse struct {
	Files      []*fileRecord `json:"files"`
	NextCursor string        `json:"next_cursor"`
}

type fileRecord struct {
	ID         string         `json:"id"`
	Path       string         `json:"path"`
	Meta       map[string]any `json:"meta"`
	UpdatedAt  time.Time      `json:"updated_at"`
	TokenCount *int           `json:"token_count"`
}

// FetchFiles retrieves one page of files for a connection. An empty
// next cursor means the listing is exhausted.
func (c *Client) FetchFiles(ctx context.Context, connectionID string, cursor string) ([]*domain.File, string, error) {
	path := "/v1/connections/" + url.PathEscape(connectionID) + "/files"
	if cursor != "" {
		path += "?cursor=" + url.QueryEscape(cursor)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var page listFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decoding file page: %w", err)
	}

	files := make([]*domain.File, 0, len(page.Files))
	for _, rec := range page.Files {
		files = append(files, &domain.File{
			ID:         rec.ID,
			Path:       rec.Path,
			Meta:       rec.Meta,
			UpdatedAt:  rec.UpdatedAt,
			TokenCount: rec.TokenCount,
		})
	}
	return files, page.NextCursor, nil
}

// doRequest performs an authenticated request with retries on server
// errors. Client errors are mapped to domain sentinels.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}

	var resp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling gateway: %w", err)
		}

		if resp.StatusCode < 500 {
			break
		}

		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.apiError(resp)
	}
	return resp, nil
}

// apiError maps a gateway error response to a domain error. The
// gateway signals a dismissed authorization popup with the
// callback_err code.
func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Code == errCodeCallback {
			return domain.ErrAuthorizationCanceled
		}
		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound
		}
		if errResp.Message != "" {
			return fmt.Errorf("gateway error %d (%s): %s", resp.StatusCode, errResp.Code, errResp.Message)
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(body))
}
