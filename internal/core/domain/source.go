package domain

import "time"

// SourceType identifies how a source is connected and synced
type SourceType string

const (
	// SourceTypeConnector is a source backed by the external OAuth
	// connector gateway (Salesforce, Notion, websites behind the gateway)
	SourceTypeConnector SourceType = "connector"

	// Legacy source types, predating the connector gateway
	SourceTypeGitHub     SourceType = "github"
	SourceTypeMotif      SourceType = "motif"
	SourceTypeWebsite    SourceType = "website"
	SourceTypeFileUpload SourceType = "file-upload"
	SourceTypeAPIUpload  SourceType = "api-upload"
)

// Source represents one connected external data origin
type Source struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Type      SourceType `json:"type"`

	// Name is the display name, unique within a project. It is
	// auto-generated on creation (see UniqueSourceName).
	Name string `json:"name"`

	// Data holds the type-specific configuration payload
	Data SourceData `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceData holds type-specific source configuration.
// For connector sources, IntegrationID and ConnectionID identify the
// external connection; the remaining fields depend on the integration.
type SourceData struct {
	IntegrationID IntegrationID `json:"integration_id,omitempty"`
	ConnectionID  string        `json:"connection_id,omitempty"`

	// Salesforce
	InstanceURL string `json:"instance_url,omitempty"`

	// GitHub (legacy)
	Owner      string `json:"owner,omitempty"`
	Repository string `json:"repository,omitempty"`
	Branch     string `json:"branch,omitempty"`

	// Website (legacy)
	BaseURL string `json:"base_url,omitempty"`

	// Generic
	Extra map[string]string `json:"extra,omitempty"`
}

// Capabilities describes per-type source behavior. Source behavior is
// resolved through this registry rather than per-type branching.
type Capabilities struct {
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	CanDelete    bool   `json:"can_delete"`
	CanConfigure bool   `json:"can_configure"`
	CanSync      bool   `json:"can_sync"`
}

// sourceCapabilities maps each source type to its capability descriptor.
// Connector-backed sources are managed by the gateway: their files are
// refreshed by syncs and are excluded from manual bulk delete. Legacy
// types carry user-managed files and allow deletion, but cannot be
// configured or re-synced from the dashboard.
var sourceCapabilities = map[SourceType]Capabilities{
	SourceTypeConnector:  {Label: "Connected source", Icon: "plug", CanDelete: false, CanConfigure: true, CanSync: true},
	SourceTypeGitHub:     {Label: "GitHub", Icon: "github", CanDelete: true},
	SourceTypeMotif:      {Label: "Motif", Icon: "motif", CanDelete: true},
	SourceTypeWebsite:    {Label: "Website", Icon: "globe", CanDelete: true},
	SourceTypeFileUpload: {Label: "File uploads", Icon: "upload", CanDelete: true},
	SourceTypeAPIUpload:  {Label: "API uploads", Icon: "terminal", CanDelete: true},
}

// CapabilitiesFor returns the capability descriptor for a source type.
// Unknown types get a zero descriptor: not deletable, not configurable.
func CapabilitiesFor(t SourceType) Capabilities {
	return sourceCapabilities[t]
}

// CanDeleteSource reports whether files of this source type may be
// bulk-deleted by the user.
func CanDeleteSource(t SourceType) bool {
	return sourceCapabilities[t].CanDelete
}

// CanConfigureSource reports whether the source exposes a settings editor.
func CanConfigureSource(t SourceType) bool {
	return sourceCapabilities[t].CanConfigure
}

// CanSyncSource reports whether the source can be synced on demand.
func CanSyncSource(t SourceType) bool {
	return sourceCapabilities[t].CanSync
}

// LabelForSource returns the display label for a source. Connector
// sources are labeled by their integration; the short form drops the
// integration qualifier ("Salesforce Knowledge" -> "Salesforce").
func LabelForSource(source *Source, short bool) string {
	if source == nil {
		return ""
	}
	if source.Type == SourceTypeConnector {
		label := IntegrationLabel(source.Data.IntegrationID)
		if label == "" {
			label = source.Name
		}
		if short {
			return shortLabel(label)
		}
		return label
	}
	return sourceCapabilities[source.Type].Label
}

// IconForSource returns the icon identifier for a source. Connector
// sources use the integration's icon.
func IconForSource(source *Source) string {
	if source == nil {
		return ""
	}
	if source.Type == SourceTypeConnector {
		if icon := IntegrationIcon(source.Data.IntegrationID); icon != "" {
			return icon
		}
	}
	return sourceCapabilities[source.Type].Icon
}

// SourceSummary pairs a source with its latest sync run and file count
type SourceSummary struct {
	Source    *Source         `json:"source"`
	FileCount int             `json:"file_count"`
	SyncQueue *SyncQueueEntry `json:"sync_queue,omitempty"`
}
