package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

const defaultPageSize = 50

// defaultPollInterval is how often the browser re-fetches while any
// source sync is running.
const defaultPollInterval = 5 * time.Second

// SelectionState summarizes the header checkbox over selectable rows.
type SelectionState int

const (
	SelectionNone SelectionState = iota
	SelectionSome
	SelectionAll
)

// FileRow is one rendered row of the file table. SourceLabel and
// SourceIcon are empty when the owning source is missing, which can
// occur transiently after a delete.
type FileRow struct {
	File        *domain.File
	Title       string
	SourceLabel string
	SourceIcon  string
	Updated     string
	Selectable  bool
	Selected    bool
}

// BrowserSession is one dashboard view over a project's file index:
// paginated, sortable, filterable by source, with capability-gated row
// selection, bulk delete, and background refresh while syncs run.
type BrowserSession struct {
	projectID string
	teamID    string
	files     driving.FileService
	sources   driving.SourceService
	syncs     driving.SyncService
	usage     driving.UsageService
	notifier  driven.Notifier
	logger    *slog.Logger

	pollInterval time.Duration

	mu            sync.Mutex
	page          int
	pageSize      int
	sortColumn    driven.SortColumn
	sortDirection driven.SortDirection
	filter        []string
	loading       bool

	pageFiles  []*domain.File
	sourceByID map[string]*domain.Source
	latest     []*domain.SyncQueueEntry
	numFiles   int
	numFiltered int
	usageStats *domain.UsageStats
	selection  map[string]bool

	closed  bool
	polling bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// pollCtx outlives any single Refresh caller; the poll task runs on
	// the session's lifetime, not the arming request's.
	pollCtx    context.Context
	pollCancel context.CancelFunc
}

// BrowserConfig holds configuration for a browser session.
type BrowserConfig struct {
	ProjectID string
	TeamID    string
	Files     driving.FileService
	Sources   driving.SourceService
	Syncs     driving.SyncService
	Usage     driving.UsageService
	Notifier  driven.Notifier
	Logger    *slog.Logger

	PageSize     int           // default: 50
	PollInterval time.Duration // default: 5s
}

// NewBrowserSession creates a new BrowserSession
func NewBrowserSession(cfg BrowserConfig) *BrowserSession {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	pollCtx, pollCancel := context.WithCancel(context.Background())
	return &BrowserSession{
		projectID:    cfg.ProjectID,
		teamID:       cfg.TeamID,
		files:        cfg.Files,
		sources:      cfg.Sources,
		syncs:        cfg.Syncs,
		usage:        cfg.Usage,
		notifier:     cfg.Notifier,
		logger:       logger,
		pollInterval: interval,
		pageSize:     pageSize,
		sourceByID:   make(map[string]*domain.Source),
		selection:    make(map[string]bool),
		pollCtx:      pollCtx,
		pollCancel:   pollCancel,
	}
}

// Refresh re-fetches the source list, latest sync runs, the current
// file page, both aggregate counts and the usage snapshot. While any
// source sync is running the session keeps refreshing itself on the
// poll interval; the poll task is disarmed, after one final refresh,
// as soon as no sync is running.
func (b *BrowserSession) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	query := driven.FileQuery{
		ProjectID:     b.projectID,
		Page:          b.page,
		PageSize:      b.pageSize,
		SortColumn:    b.sortColumn,
		SortDirection: b.sortDirection,
		SourceIDs:     append([]string(nil), b.filter...),
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
	}()

	sources, err := b.sources.List(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	latest, err := b.syncs.LatestByProject(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("listing sync runs: %w", err)
	}
	files, err := b.files.ListPage(ctx, query)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	numFiles, err := b.files.Count(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("counting files: %w", err)
	}
	numFiltered, err := b.files.CountWithFilters(ctx, b.projectID, query.SourceIDs)
	if err != nil {
		return fmt.Errorf("counting filtered files: %w", err)
	}
	usageStats, err := b.usage.Stats(ctx, b.teamID)
	if err != nil {
		return fmt.Errorf("fetching usage: %w", err)
	}

	b.mu.Lock()
	byID := make(map[string]*domain.Source, len(sources))
	for _, source := range sources {
		byID[source.ID] = source
	}
	if pageChanged(b.pageFiles, files) {
		b.selection = make(map[string]bool)
	}
	b.pageFiles = files
	b.sourceByID = byID
	b.latest = latest
	b.numFiles = numFiles
	b.numFiltered = numFiltered
	b.usageStats = usageStats
	running := domain.AnySyncRunning(latest)
	b.mu.Unlock()

	b.setPolling(running)
	return nil
}

// pageChanged reports whether the page's id set differs. Selection is
// ephemeral and must never reference removed rows.
func pageChanged(prev, next []*domain.File) bool {
	if len(prev) != len(next) {
		return true
	}
	ids := make(map[string]bool, len(prev))
	for _, f := range prev {
		ids[f.ID] = true
	}
	for _, f := range next {
		if !ids[f.ID] {
			return true
		}
	}
	return false
}

func (b *BrowserSession) setPolling(running bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if running && !b.polling {
		b.polling = true
		b.stopCh = make(chan struct{})
		b.doneCh = make(chan struct{})
		go b.pollLoop(b.pollCtx, b.stopCh, b.doneCh)
	} else if !running && b.polling {
		b.polling = false
		close(b.stopCh)
	}
}

func (b *BrowserSession) pollLoop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := b.Refresh(ctx); err != nil {
				b.logger.Error("background refresh failed", "error", err)
			}
		}
	}
}

// Close tears the session down, stopping the poll task if armed.
func (b *BrowserSession) Close() {
	b.mu.Lock()
	b.closed = true
	var doneCh chan struct{}
	if b.polling {
		b.polling = false
		close(b.stopCh)
		doneCh = b.doneCh
	}
	b.mu.Unlock()

	b.pollCancel()
	if doneCh != nil {
		<-doneCh
	}
}

// Polling reports whether the background poll task is armed.
func (b *BrowserSession) Polling() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polling
}

// Rows renders the current page.
func (b *BrowserSession) Rows() []FileRow {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]FileRow, 0, len(b.pageFiles))
	for _, file := range b.pageFiles {
		row := FileRow{
			File:     file,
			Title:    domain.FileTitle(file),
			Updated:  humanize.Time(file.UpdatedAt),
			Selected: b.selection[file.ID],
		}
		if source, ok := b.sourceByID[file.SourceID]; ok {
			row.SourceLabel = domain.LabelForSource(source, true)
			row.SourceIcon = domain.IconForSource(source)
			row.Selectable = domain.CanDeleteSource(source.Type)
		}
		rows = append(rows, row)
	}
	return rows
}

// ShowSelectionColumn reports whether any row on the page is
// selectable; the checkbox column is hidden entirely otherwise.
func (b *BrowserSession) ShowSelectionColumn() bool {
	for _, row := range b.Rows() {
		if row.Selectable {
			return true
		}
	}
	return false
}

// ToggleRow flips a row's selection. Rows from non-deletable source
// types cannot be selected.
func (b *BrowserSession) ToggleRow(fileID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.selectableLocked(fileID) {
		return
	}
	if b.selection[fileID] {
		delete(b.selection, fileID)
	} else {
		b.selection[fileID] = true
	}
}

// HeaderSelection returns the header checkbox state over the page's
// selectable rows only.
func (b *BrowserSession) HeaderSelection() SelectionState {
	b.mu.Lock()
	defer b.mu.Unlock()

	selectable, selected := 0, 0
	for _, file := range b.pageFiles {
		if !b.selectableLocked(file.ID) {
			continue
		}
		selectable++
		if b.selection[file.ID] {
			selected++
		}
	}
	switch {
	case selectable == 0 || selected == 0:
		return SelectionNone
	case selected == selectable:
		return SelectionAll
	default:
		return SelectionSome
	}
}

// ToggleSelectAll selects every selectable row on the page, or clears
// the selection when all of them are already selected.
func (b *BrowserSession) ToggleSelectAll() {
	all := b.HeaderSelection() == SelectionAll

	b.mu.Lock()
	defer b.mu.Unlock()

	if all {
		b.selection = make(map[string]bool)
		return
	}
	for _, file := range b.pageFiles {
		if b.selectableLocked(file.ID) {
			b.selection[file.ID] = true
		}
	}
}

// SelectedIDs returns the selected row ids.
func (b *BrowserSession) SelectedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.selection))
	for _, file := range b.pageFiles {
		if b.selection[file.ID] {
			ids = append(ids, file.ID)
		}
	}
	return ids
}

// selectableLocked must be called with the lock held.
func (b *BrowserSession) selectableLocked(fileID string) bool {
	for _, file := range b.pageFiles {
		if file.ID != fileID {
			continue
		}
		source, ok := b.sourceByID[file.SourceID]
		return ok && domain.CanDeleteSource(source.Type)
	}
	return false
}

// DeleteSelected deletes the selected files. The steps are strictly
// sequential: delete, drop the deleted ids from the held page, refresh
// usage, refresh both counts, clear selection. On failure nothing is
// mutated and the error is surfaced.
func (b *BrowserSession) DeleteSelected(ctx context.Context) error {
	ids := b.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}

	if err := b.files.DeleteFiles(ctx, b.projectID, ids); err != nil {
		b.notifier.Error("Error deleting files.")
		return err
	}

	b.mu.Lock()
	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
	}
	kept := b.pageFiles[:0]
	for _, file := range b.pageFiles {
		if !deleted[file.ID] {
			kept = append(kept, file)
		}
	}
	b.pageFiles = kept
	filter := append([]string(nil), b.filter...)
	b.mu.Unlock()

	usageStats, err := b.usage.Stats(ctx, b.teamID)
	if err != nil {
		return fmt.Errorf("refreshing usage: %w", err)
	}
	numFiles, err := b.files.Count(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("refreshing count: %w", err)
	}
	numFiltered, err := b.files.CountWithFilters(ctx, b.projectID, filter)
	if err != nil {
		return fmt.Errorf("refreshing filtered count: %w", err)
	}

	b.mu.Lock()
	b.usageStats = usageStats
	b.numFiles = numFiles
	b.numFiltered = numFiltered
	b.selection = make(map[string]bool)
	b.mu.Unlock()

	b.notifier.Success(fmt.Sprintf("Deleted %s.", domain.Pluralize(len(ids), "file", "files")))
	return nil
}

// ToggleSorting toggles a sortable column. A column newly sorted
// defaults to ascending for the title column and descending otherwise;
// toggling the active column flips the direction.
func (b *BrowserSession) ToggleSorting(column driven.SortColumn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sortColumn == column {
		if b.sortDirection == driven.SortAsc {
			b.sortDirection = driven.SortDesc
		} else {
			b.sortDirection = driven.SortAsc
		}
		return
	}
	b.sortColumn = column
	if column == driven.SortByName {
		b.sortDirection = driven.SortAsc
	} else {
		b.sortDirection = driven.SortDesc
	}
}

// Sorting returns the active sort column and direction.
func (b *BrowserSession) Sorting() (driven.SortColumn, driven.SortDirection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortColumn, b.sortDirection
}

// SetFilter restricts the file list to the given source ids, resetting
// to the first page. An empty filter removes the restriction.
func (b *BrowserSession) SetFilter(sourceIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = append([]string(nil), sourceIDs...)
	b.page = 0
}

// FilterLabel summarizes the active filter as the first selected
// source's label plus a "+N" count of additional selections.
func (b *BrowserSession) FilterLabel() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.filter) == 0 {
		return ""
	}
	label := ""
	if source, ok := b.sourceByID[b.filter[0]]; ok {
		label = domain.LabelForSource(source, true)
	}
	if len(b.filter) > 1 {
		label = fmt.Sprintf("%s +%d", label, len(b.filter)-1)
	}
	return label
}

// Page returns the zero-based page index.
func (b *BrowserSession) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// HasMorePages reports whether a further page exists under the active
// filter.
func (b *BrowserSession) HasMorePages() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMoreLocked()
}

func (b *BrowserSession) hasMoreLocked() bool {
	return (b.page+1)*b.pageSize < b.numFiltered
}

// CanPrevious reports whether the Previous control is enabled.
func (b *BrowserSession) CanPrevious() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page > 0 && !b.loading
}

// CanNext reports whether the Next control is enabled.
func (b *BrowserSession) CanNext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMoreLocked() && !b.loading
}

// PreviousPage moves back one page when possible.
func (b *BrowserSession) PreviousPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page > 0 && !b.loading {
		b.page--
	}
}

// NextPage advances one page when possible.
func (b *BrowserSession) NextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hasMoreLocked() && !b.loading {
		b.page++
	}
}

// RangeLabel renders the pagination footer. Empty when there is
// nothing to page through.
func (b *BrowserSession) RangeLabel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.numFiltered == 0 {
		return ""
	}
	start, end := domain.PageRange(b.page, b.pageSize, b.numFiltered)
	return fmt.Sprintf("Viewing %d–%d of %s", start, end, domain.Pluralize(b.numFiltered, "result", "results"))
}

// Usage returns the latest usage snapshot.
func (b *BrowserSession) Usage() *domain.UsageStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usageStats
}

// Counts returns the unfiltered and filtered file counts.
func (b *BrowserSession) Counts() (numFiles, numFilesWithFilters int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.numFiles, b.numFiltered
}
