package services

import (
	"context"
	"errors"
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven/mocks"
)

type wizardFixture struct {
	session   *WizardSession
	connector *mocks.MockConnectorClient
	notifier  *mocks.MockNotifier
	sources   *mocks.MockSourceStore
	taskQueue *mocks.MockTaskQueue
	closed    *int
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()

	sourceStore := mocks.NewMockSourceStore()
	fileStore := mocks.NewMockFileStore()
	syncQueueStore := mocks.NewMockSyncQueueStore()
	connector := mocks.NewMockConnectorClient()
	taskQueue := mocks.NewMockTaskQueue()
	notifier := mocks.NewMockNotifier()

	closed := 0
	session := NewWizardSession(WizardConfig{
		ProjectID: "proj-1",
		Sources:   NewSourceService(sourceStore, fileStore, syncQueueStore, connector),
		Sync:      NewSyncService(syncQueueStore, taskQueue, nil),
		Connector: connector,
		Notifier:  notifier,
		OnClose:   func() { closed++ },
	})

	return &wizardFixture{
		session:   session,
		connector: connector,
		notifier:  notifier,
		sources:   sourceStore,
		taskQueue: taskQueue,
		closed:    &closed,
	}
}

func validConnect() ConnectRequest {
	return ConnectRequest{
		Environment: domain.SalesforceEnvironmentProduction,
		InstanceURL: "https://acme.my.salesforce.com",
	}
}

func TestWizardSession_Connect(t *testing.T) {
	f := newWizardFixture(t)

	source, err := f.session.Connect(context.Background(), validConnect())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source == nil {
		t.Fatal("expected a source")
	}
	if source.Type != domain.SourceTypeConnector {
		t.Errorf("expected connector source, got %s", source.Type)
	}
	if source.Name != "Salesforce Knowledge" {
		t.Errorf("expected generated name, got %q", source.Name)
	}
	if source.Data.ConnectionID == "" {
		t.Error("expected a connection handle on the source")
	}
	if got := f.notifier.Last(); got.Level != "success" {
		t.Errorf("expected success notification, got %+v", got)
	}

	states := f.session.StepStates()
	if states.Connect != domain.StepComplete || states.Configure != domain.StepInProgress || states.Sync != domain.StepNotStarted {
		t.Errorf("unexpected step states after connect: %+v", states)
	}
}

func TestWizardSession_Connect_RefusesDoubleSubmit(t *testing.T) {
	f := newWizardFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.connector.CreateConnectionFn = func(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
		close(started)
		<-release
		return &driven.Connection{ID: "conn-1", IntegrationID: integrationID}, nil
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := f.session.Connect(context.Background(), validConnect())
		errCh <- err
	}()

	// A second submit while the first is still in flight is refused
	// with a recognizable error, not silently swallowed.
	<-started
	if _, err := f.session.Connect(context.Background(), validConnect()); !errors.Is(err, domain.ErrSubmissionInProgress) {
		t.Errorf("expected ErrSubmissionInProgress, got %v", err)
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Errorf("first submission must complete: %v", err)
	}

	// The flag resets with the submission: a later connect goes through.
	f.connector.CreateConnectionFn = nil
	if _, err := f.session.Connect(context.Background(), validConnect()); err != nil {
		t.Errorf("unexpected error after first submission finished: %v", err)
	}
}

func TestWizardSession_Connect_SandboxEnvironment(t *testing.T) {
	f := newWizardFixture(t)

	var gotIntegration domain.IntegrationID
	f.connector.CreateConnectionFn = func(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
		gotIntegration = integrationID
		if payload["instance_url"] != "https://acme--dev.sandbox.my.salesforce.com" {
			t.Errorf("unexpected payload: %+v", payload)
		}
		return &driven.Connection{ID: "conn-1", IntegrationID: integrationID}, nil
	}

	_, err := f.session.Connect(context.Background(), ConnectRequest{
		Environment: domain.SalesforceEnvironmentSandbox,
		InstanceURL: "https://acme--dev.sandbox.my.salesforce.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotIntegration != domain.IntegrationSalesforceKnowledgeSandbox {
		t.Errorf("expected sandbox integration, got %s", gotIntegration)
	}
}

func TestWizardSession_Connect_InvalidURL(t *testing.T) {
	f := newWizardFixture(t)

	for _, raw := range []string{"", "not a url", "ftp://example.com", "https://"} {
		_, err := f.session.Connect(context.Background(), ConnectRequest{
			Environment: domain.SalesforceEnvironmentProduction,
			InstanceURL: raw,
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("URL %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
	if f.connector.ConnectionCount() != 0 {
		t.Error("no connection should be attempted for invalid URLs")
	}
	if f.notifier.Count() != 0 {
		t.Error("validation errors are field-level, not notifications")
	}
}

func TestWizardSession_Connect_CanceledVsError(t *testing.T) {
	t.Run("authorization canceled", func(t *testing.T) {
		f := newWizardFixture(t)
		f.connector.CreateConnectionFn = func(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
			return nil, domain.ErrAuthorizationCanceled
		}

		source, err := f.session.Connect(context.Background(), validConnect())
		if !errors.Is(err, domain.ErrAuthorizationCanceled) {
			t.Errorf("expected ErrAuthorizationCanceled, got %v", err)
		}
		if source != nil || f.session.Source() != nil {
			t.Error("no source should be left behind")
		}
		if f.sources.Count() != 0 {
			t.Error("no source should be persisted")
		}
		if got := f.notifier.Last(); got.Level != "info" {
			t.Errorf("cancellation is a neutral notice, got %+v", got)
		}
	})

	t.Run("generic failure", func(t *testing.T) {
		f := newWizardFixture(t)
		f.connector.CreateConnectionFn = func(ctx context.Context, projectID string, integrationID domain.IntegrationID, name string, payload map[string]any) (*driven.Connection, error) {
			return nil, errors.New("gateway unavailable")
		}

		source, err := f.session.Connect(context.Background(), validConnect())
		if err == nil {
			t.Fatal("expected an error")
		}
		if source != nil || f.session.Source() != nil {
			t.Error("no source should be left behind")
		}
		if got := f.notifier.Last(); got.Level != "error" {
			t.Errorf("expected generic error notification, got %+v", got)
		}
	})
}

func TestWizardSession_ConfigureRequiresSource(t *testing.T) {
	f := newWizardFixture(t)

	if err := f.session.CompleteConfiguration(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput before connect, got %v", err)
	}

	if _, err := f.session.Connect(context.Background(), validConnect()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.session.CompleteConfiguration(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states := f.session.StepStates()
	if states.Configure != domain.StepComplete || states.Sync != domain.StepInProgress {
		t.Errorf("unexpected step states after configure: %+v", states)
	}

	// The flag is irreversible within the session.
	if err := f.session.CompleteConfiguration(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.session.StepStates().Configure != domain.StepComplete {
		t.Error("configure must stay complete")
	}
}

func TestWizardSession_StartSync(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	if _, err := f.session.StartSync(ctx); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("sync before configure should fail, got %v", err)
	}

	if _, err := f.session.Connect(ctx, validConnect()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.session.CompleteConfiguration(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := f.session.StartSync(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.SyncStatusRunning {
		t.Errorf("expected running entry, got %s", entry.Status)
	}
	if f.taskQueue.PendingCount() != 1 {
		t.Errorf("expected 1 enqueued task, got %d", f.taskQueue.PendingCount())
	}
}

func TestWizardSession_CompleteSyncResetsAndCloses(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	if _, err := f.session.Connect(ctx, validConnect()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.session.CompleteConfiguration(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.session.CompleteSync()

	if *f.closed != 1 {
		t.Errorf("expected the dialog close to be requested once, got %d", *f.closed)
	}
	states := f.session.StepStates()
	if states.Connect != domain.StepInProgress || states.Configure != domain.StepNotStarted || states.Sync != domain.StepNotStarted {
		t.Errorf("expected initial states after completion, got %+v", states)
	}
}

func TestWizardSession_CloseResetsFromAnyState(t *testing.T) {
	ctx := context.Background()

	advance := []func(t *testing.T, f *wizardFixture){
		func(t *testing.T, f *wizardFixture) {},
		func(t *testing.T, f *wizardFixture) {
			if _, err := f.session.Connect(ctx, validConnect()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		},
		func(t *testing.T, f *wizardFixture) {
			if _, err := f.session.Connect(ctx, validConnect()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := f.session.CompleteConfiguration(ctx, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		},
	}

	for i, setup := range advance {
		f := newWizardFixture(t)
		setup(t, f)
		f.session.Close()

		states := f.session.StepStates()
		if states.Connect != domain.StepInProgress || states.Configure != domain.StepNotStarted || states.Sync != domain.StepNotStarted {
			t.Errorf("state %d: close must reset to initial, got %+v", i, states)
		}
		if f.session.Source() != nil {
			t.Errorf("state %d: source pointer must be cleared", i)
		}
	}
}
