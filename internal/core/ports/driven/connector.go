package driven

import (
	"context"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// ConnectorClient talks to the external OAuth connector gateway. The
// gateway owns the authorization flow (popup, token exchange, token
// storage); this client only provisions and queries connections.
type ConnectorClient interface {
	// CreateConnection runs the authorization flow for an integration
	// and registers a connection under the given name. The payload is
	// integration-specific (e.g. {"instance_url": ...} for Salesforce).
	//
	// Returns domain.ErrAuthorizationCanceled when the user dismissed
	// the authorization flow; any other error is a connection failure.
	// No connection is left behind on failure.
	CreateConnection(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*Connection, error)

	// DeleteConnection removes a connection from the gateway
	DeleteConnection(ctx context.Context, connectionID string) error

	// FetchFiles retrieves one page of files from a connection. An
	// empty cursor starts from the beginning; an empty next cursor
	// means the listing is exhausted.
	FetchFiles(ctx context.Context, connectionID string, cursor string) (files []*domain.File, nextCursor string, err error)
}

// Connection is the gateway's handle for an authorized integration
type Connection struct {
	ID            string               `json:"id"`
	IntegrationID domain.IntegrationID `json:"integration_id"`
}
