package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// FileListResponse is one page of the file browser listing
// @Description One page of files plus the filtered total
type FileListResponse struct {
	Files    []*domain.File `json:"files"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
}

// CountResponse carries a single count
// @Description File count response
type CountResponse struct {
	Count int `json:"count" example:"42"`
}

// DeleteFilesRequest is a bulk file deletion request
// @Description IDs of the files to delete
type DeleteFilesRequest struct {
	IDs []string `json:"ids"`
}

// TriggerSyncRequest selects the sources to sync; empty means all
// syncable sources of the project
// @Description Source selection for a sync run
type TriggerSyncRequest struct {
	SourceIDs []string `json:"source_ids"`
}

// SyncStatusResponse is the latest sync status of a source
// @Description Latest sync status; empty when never synced
type SyncStatusResponse struct {
	Status domain.SyncStatus `json:"status"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness, checking the database and queue backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials, domain.ErrInvalidInput:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case domain.ErrUnauthorized:
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Source endpoints

// handleListSources godoc
// @Summary      List sources
// @Description  List the data sources of a project
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Success      200        {array}   domain.Source
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Failure      500        {object}  ErrorResponse  "Internal server error"
// @Router       /projects/{projectID}/sources [get]
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.sourceService.List(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// handleListSourceSummaries godoc
// @Summary      List sources with sync summary
// @Description  List sources with file counts and the latest sync run per source
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Success      200        {array}   domain.SourceSummary
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Failure      500        {object}  ErrorResponse  "Internal server error"
// @Router       /projects/{projectID}/sources/summary [get]
func (s *Server) handleListSourceSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.sourceService.ListWithSummary(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleCreateSource godoc
// @Summary      Create source
// @Description  Create a data source (admin only). Connector sources are provisioned through the onboarding wizard instead.
// @Tags         Sources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string                        true  "Project ID"
// @Param        request    body      driving.CreateSourceRequest  true  "Source details"
// @Success      201        {object}  domain.Source
// @Failure      400        {object}  ErrorResponse  "Invalid request"
// @Failure      409        {object}  ErrorResponse  "Name already in use"
// @Failure      500        {object}  ErrorResponse  "Internal server error"
// @Router       /projects/{projectID}/sources [post]
func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := s.sourceService.Create(r.Context(), r.PathValue("projectID"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "source name already in use")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid source")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create source")
		}
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

// handleGetSource godoc
// @Summary      Get source
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  domain.Source
// @Failure      404  {object}  ErrorResponse  "Source not found"
// @Router       /sources/{id} [get]
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	source, err := s.sourceService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get source")
		return
	}
	writeJSON(w, http.StatusOK, source)
}

// handleUpdateSource godoc
// @Summary      Update source
// @Description  Update a source's name or settings payload (admin only)
// @Tags         Sources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Source ID"
// @Param        request  body      driving.UpdateSourceRequest  true  "Fields to update"
// @Success      200      {object}  domain.Source
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      404      {object}  ErrorResponse  "Source not found"
// @Failure      409      {object}  ErrorResponse  "Name already in use"
// @Router       /sources/{id} [put]
func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := s.sourceService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "source not found")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "source name already in use")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update source")
		}
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// handleDeleteSource godoc
// @Summary      Delete source
// @Description  Delete a source, its files and its sync history (admin only). Connector sources cannot be deleted.
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Source not found"
// @Failure      409  {object}  ErrorResponse  "Source type cannot be deleted"
// @Router       /sources/{id} [delete]
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	err := s.sourceService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "source not found")
		case errors.Is(err, domain.ErrSourceNotDeletable):
			writeError(w, http.StatusConflict, "source type cannot be deleted")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete source")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// File endpoints

// handleListFiles godoc
// @Summary      List files
// @Description  List one page of a project's files. Sorting and source filters are applied server-side.
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        projectID   path      string  true   "Project ID"
// @Param        page        query     int     false  "Zero-based page index"
// @Param        limit       query     int     false  "Page size (default 50)"
// @Param        sort        query     string  false  "Sort column: name or updated"
// @Param        dir         query     string  false  "Sort direction: asc or desc"
// @Param        source_ids  query     string  false  "Comma-separated source IDs"
// @Success      200         {object}  FileListResponse
// @Failure      400         {object}  ErrorResponse  "Invalid query"
// @Failure      401         {object}  ErrorResponse  "Unauthorized"
// @Router       /projects/{projectID}/files [get]
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q, err := parseFileQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files, err := s.fileService.ListPage(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	total, err := s.fileService.CountWithFilters(r.Context(), q.ProjectID, q.SourceIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count files")
		return
	}

	if files == nil {
		files = []*domain.File{}
	}
	writeJSON(w, http.StatusOK, FileListResponse{
		Files:    files,
		Page:     q.Page,
		PageSize: q.PageSize,
		Total:    total,
	})
}

// handleCountFiles godoc
// @Summary      Count files
// @Description  Count a project's files, optionally restricted to sources
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        projectID   path      string  true   "Project ID"
// @Param        source_ids  query     string  false  "Comma-separated source IDs"
// @Success      200         {object}  CountResponse
// @Failure      401         {object}  ErrorResponse  "Unauthorized"
// @Router       /projects/{projectID}/files/count [get]
func (s *Server) handleCountFiles(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	sourceIDs := splitParam(r.URL.Query().Get("source_ids"))

	var count int
	var err error
	if len(sourceIDs) > 0 {
		count, err = s.fileService.CountWithFilters(r.Context(), projectID, sourceIDs)
	} else {
		count, err = s.fileService.Count(r.Context(), projectID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count files")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

// handleDeleteFiles godoc
// @Summary      Delete files
// @Description  Delete files by ID in one batch. An empty ID list is a no-op.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string              true  "Project ID"
// @Param        request    body      DeleteFilesRequest  true  "File IDs"
// @Success      200        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse  "Invalid request body"
// @Failure      500        {object}  ErrorResponse  "Deletion failed"
// @Router       /projects/{projectID}/files/delete [post]
func (s *Server) handleDeleteFiles(w http.ResponseWriter, r *http.Request) {
	var req DeleteFilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.fileService.DeleteFiles(r.Context(), r.PathValue("projectID"), req.IDs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete files")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sync endpoints

// handleTriggerSync godoc
// @Summary      Trigger sync
// @Description  Enqueue a sync run for the selected sources; empty selection syncs every syncable source of the project
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string              true   "Project ID"
// @Param        request    body      TriggerSyncRequest  false  "Source selection"
// @Success      202        {array}   domain.SyncQueueEntry
// @Failure      409        {object}  ErrorResponse  "A sync is already running"
// @Failure      500        {object}  ErrorResponse  "Internal server error"
// @Router       /projects/{projectID}/sync [post]
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	var req TriggerSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID := r.PathValue("projectID")
	sources, err := s.sourceService.List(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	if len(req.SourceIDs) > 0 {
		selected := make(map[string]bool, len(req.SourceIDs))
		for _, id := range req.SourceIDs {
			selected[id] = true
		}
		filtered := sources[:0]
		for _, src := range sources {
			if selected[src.ID] {
				filtered = append(filtered, src)
			}
		}
		sources = filtered
	}

	entries, err := s.syncService.TriggerSync(r.Context(), projectID, sources)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to trigger sync")
		return
	}

	writeJSON(w, http.StatusAccepted, entries)
}

// handleLatestSyncs godoc
// @Summary      Latest sync runs
// @Description  The latest sync queue entry per source of a project
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Success      200        {array}   domain.SyncQueueEntry
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Router       /projects/{projectID}/sync/latest [get]
func (s *Server) handleLatestSyncs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.syncService.LatestByProject(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sync runs")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSyncStatus godoc
// @Summary      Sync status
// @Description  The status of the latest sync run for a source; empty when never synced
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  SyncStatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /sources/{id}/sync [get]
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.syncService.CurrentStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get sync status")
		return
	}
	writeJSON(w, http.StatusOK, SyncStatusResponse{Status: status})
}

// handleStopSync godoc
// @Summary      Stop sync
// @Description  Request cancellation of the running sync for a source
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Source ID"
// @Success      200  {object}  StatusResponse
// @Failure      409  {object}  ErrorResponse  "No sync is running"
// @Router       /sources/{id}/sync [delete]
func (s *Server) handleStopSync(w http.ResponseWriter, r *http.Request) {
	if err := s.syncService.StopSync(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrSyncNotRunning) {
			writeError(w, http.StatusConflict, "no sync is running")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to stop sync")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// Token endpoints

// handleListTokens godoc
// @Summary      List API tokens
// @Description  List a project's API tokens with decrypted values (admin only)
// @Tags         Tokens
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Success      200        {array}   domain.Token
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Failure      403        {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /projects/{projectID}/tokens [get]
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.tokenService.List(r.Context(), r.PathValue("projectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// handleCreateToken godoc
// @Summary      Create API token
// @Description  Mint a new API token for a project (admin only)
// @Tags         Tokens
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Success      201        {object}  domain.Token
// @Failure      401        {object}  ErrorResponse  "Unauthorized"
// @Failure      403        {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /projects/{projectID}/tokens [post]
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	token, err := s.tokenService.Create(r.Context(), r.PathValue("projectID"), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

// handleDeleteToken godoc
// @Summary      Delete API token
// @Tags         Tokens
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Token ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Token not found"
// @Router       /tokens/{id} [delete]
func (s *Server) handleDeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := s.tokenService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "token not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Usage endpoint

// handleUsage godoc
// @Summary      Team usage
// @Description  The team's usage/quota snapshot
// @Tags         Usage
// @Produce      json
// @Security     BearerAuth
// @Param        teamID  path      string  true  "Team ID"
// @Success      200     {object}  domain.UsageStats
// @Failure      404     {object}  ErrorResponse  "Team not found"
// @Router       /teams/{teamID}/usage [get]
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.usageService.Stats(r.Context(), r.PathValue("teamID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get usage")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Admin endpoints

// handleQueueStats godoc
// @Summary      Queue statistics
// @Description  Task queue statistics (admin only)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driven.QueueStats
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /admin/queue/stats [get]
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get queue stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Helper functions

func parseFileQuery(r *http.Request) (driven.FileQuery, error) {
	q := driven.FileQuery{
		ProjectID:     r.PathValue("projectID"),
		PageSize:      50,
		SortColumn:    driven.SortByName,
		SortDirection: driven.SortAsc,
	}

	params := r.URL.Query()
	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return q, errors.New("invalid page")
		}
		q.Page = page
	}
	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, errors.New("invalid limit")
		}
		q.PageSize = limit
	}
	switch params.Get("sort") {
	case "", "name":
		q.SortColumn = driven.SortByName
	case "updated":
		q.SortColumn = driven.SortByUpdated
		if params.Get("dir") == "" {
			q.SortDirection = driven.SortDesc
		}
	default:
		return q, errors.New("invalid sort column")
	}
	switch params.Get("dir") {
	case "":
	case "asc":
		q.SortDirection = driven.SortAsc
	case "desc":
		q.SortDirection = driven.SortDesc
	default:
		return q, errors.New("invalid sort direction")
	}
	q.SourceIDs = splitParam(params.Get("source_ids"))

	return q, nil
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
