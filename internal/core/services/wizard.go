package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// WizardSession drives one onboarding dialog lifetime through the
// Connect, Configure and Sync steps. Step states are derived from the
// session's source pointer and configured flag, never stored.
//
// A session is not shared across dialogs: closing the dialog resets it
// unconditionally and re-opening restarts at Connect.
type WizardSession struct {
	projectID string
	sources   driving.SourceService
	sync      driving.SyncService
	connector driven.ConnectorClient
	notifier  driven.Notifier
	logger    *slog.Logger
	onClose   func()

	mu         sync.Mutex
	source     *domain.Source
	configured bool
	submitting bool
}

// WizardConfig holds configuration for a wizard session.
type WizardConfig struct {
	ProjectID string
	Sources   driving.SourceService
	Sync      driving.SyncService
	Connector driven.ConnectorClient
	Notifier  driven.Notifier
	Logger    *slog.Logger

	// OnClose is invoked when the session requests the hosting dialog
	// to close (after sync completion). Optional.
	OnClose func()
}

// NewWizardSession creates a new WizardSession
func NewWizardSession(cfg WizardConfig) *WizardSession {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WizardSession{
		projectID: cfg.ProjectID,
		sources:   cfg.Sources,
		sync:      cfg.Sync,
		connector: cfg.Connector,
		notifier:  cfg.Notifier,
		logger:    logger,
		onClose:   cfg.OnClose,
	}
}

// ConnectRequest carries the Connect step's form fields.
type ConnectRequest struct {
	Environment domain.SalesforceEnvironment `json:"environment"`
	InstanceURL string                       `json:"instance_url"`
}

// ValidateInstanceURL is the field-change validator for the instance
// URL input. It returns domain.ErrInvalidInput for malformed URLs.
func (w *WizardSession) ValidateInstanceURL(raw string) error {
	if !domain.IsURL(raw) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Connect authorizes the external connection and creates the session's
// source. On user cancellation of the authorization a neutral notice is
// shown and no source is left behind; other failures surface a generic
// connection error. Re-entrant calls while a submission is in flight
// are refused with ErrSubmissionInProgress.
func (w *WizardSession) Connect(ctx context.Context, req ConnectRequest) (*domain.Source, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	// Validated on every field change already, checked again before any
	// network call is issued.
	if err := w.ValidateInstanceURL(req.InstanceURL); err != nil {
		return nil, err
	}

	integrationID := domain.KnowledgeIntegrationID(req.Environment)
	name, err := w.sources.GenerateUniqueName(ctx, w.projectID, integrationID)
	if err != nil {
		return nil, err
	}

	conn, err := w.connector.CreateConnection(ctx, w.projectID, integrationID, name, map[string]any{
		"instance_url": req.InstanceURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuthorizationCanceled) {
			w.notifier.Info("Connection canceled.")
			return nil, err
		}
		w.logger.Error("connection failed", "integration_id", integrationID, "error", err)
		w.notifier.Error("Error connecting to the data source.")
		return nil, err
	}

	source, err := w.sources.Create(ctx, w.projectID, driving.CreateSourceRequest{
		Type: domain.SourceTypeConnector,
		Name: name,
		Data: domain.SourceData{
			IntegrationID: integrationID,
			ConnectionID:  conn.ID,
			InstanceURL:   req.InstanceURL,
		},
	})
	if err != nil {
		// The connection exists but the source does not; remove the
		// connection so no partial state is left behind.
		_ = w.connector.DeleteConnection(ctx, conn.ID)
		w.notifier.Error("Error connecting to the data source.")
		return nil, err
	}

	w.mu.Lock()
	w.source = source
	w.mu.Unlock()

	w.notifier.Success("Source connected.")
	return source, nil
}

// CompleteConfiguration persists the type-specific settings payload and
// flips the configured flag. The flag is irreversible for the session:
// saving again keeps the step complete. The step is forced-disabled
// until Connect has produced a source.
func (w *WizardSession) CompleteConfiguration(ctx context.Context, data *domain.SourceData) error {
	w.mu.Lock()
	source := w.source
	w.mu.Unlock()

	if source == nil {
		return domain.ErrInvalidInput
	}

	if data != nil {
		updated, err := w.sources.Update(ctx, source.ID, driving.UpdateSourceRequest{Data: data})
		if err != nil {
			w.notifier.Error("Error saving configuration.")
			return err
		}
		w.mu.Lock()
		w.source = updated
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.configured = true
	w.mu.Unlock()
	return nil
}

// StartSync triggers the source's first sync run. Only valid once the
// Configure step has completed.
func (w *WizardSession) StartSync(ctx context.Context) (*domain.SyncQueueEntry, error) {
	w.mu.Lock()
	source := w.source
	configured := w.configured
	w.mu.Unlock()

	if source == nil || !configured {
		return nil, domain.ErrInvalidInput
	}

	entries, err := w.sync.TriggerSync(ctx, w.projectID, []*domain.Source{source})
	if err != nil {
		w.notifier.Error("Error starting sync.")
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return entries[0], nil
}

// CompleteSync is the sync completion callback: it resets the session
// and requests the hosting dialog to close.
func (w *WizardSession) CompleteSync() {
	w.reset()
	if w.onClose != nil {
		w.onClose()
	}
}

// Close resets the session unconditionally. Re-opening the dialog
// always restarts at Connect.
func (w *WizardSession) Close() {
	w.reset()
}

// StepStates derives the three step states from the session's state.
func (w *WizardSession) StepStates() domain.StepStates {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.DeriveStepStates(w.source != nil, w.configured)
}

// Source returns the source created by the Connect step, if any.
func (w *WizardSession) Source() *domain.Source {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.source
}

// Submitting reports whether a Connect submission is in flight.
func (w *WizardSession) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *WizardSession) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.source = nil
	w.configured = false
	w.submitting = false
}
