package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
	"github.com/seqcentral/metior/internal/services/query"
)

// JobsHandler serves the resolved job-state query API.
type JobsHandler struct {
	queryService *query.Service
	tracker      interfaces.TrackerStore
	resolver     interfaces.Resolver
	logger       arbor.ILogger
}

// NewJobsHandler creates a new JobsHandler
func NewJobsHandler(queryService *query.Service, tracker interfaces.TrackerStore, resolver interfaces.Resolver, logger arbor.ILogger) *JobsHandler {
	return &JobsHandler{
		queryService: queryService,
		tracker:      tracker,
		resolver:     resolver,
		logger:       logger,
	}
}

// ListJobsHandler handles GET /api/jobs
func (h *JobsHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	q, err := h.parseQuery(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	result, err := h.queryService.Query(r.Context(), q)
	if err != nil {
		h.logger.Warn().Err(err).Str("caller", q.Caller).Msg("Job query failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// GetJobHandler handles GET /api/jobs/{id}
func (h *JobsHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	caller, admin := CallerIdentity(r)
	if caller == "" {
		WriteError(w, http.StatusBadRequest, "missing caller identity")
		return
	}

	rawID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id, err := models.ParseJobID(rawID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	entries, err := h.tracker.ListByIDs(r.Context(), []models.JobID{id})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if len(entries) == 0 {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	if !admin && entries[0].User != caller {
		WriteServiceError(w, fmt.Errorf("%w: job %s belongs to another user", models.ErrPermission, id))
		return
	}

	resolved, err := h.resolver.Resolve(r.Context(), entries)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resolved[0])
}

// parseQuery builds a JobQuery from the request's identity headers and query
// string. Sort fields use a leading "-" for descending.
func (h *JobsHandler) parseQuery(r *http.Request) (*models.JobQuery, error) {
	caller, admin := CallerIdentity(r)

	q := &models.JobQuery{
		Caller:   caller,
		Admin:    admin,
		Users:    r.URL.Query()["user"],
		Statuses: r.URL.Query()["status"],
	}

	for _, raw := range r.URL.Query()["job_id"] {
		id, err := models.ParseJobID(raw)
		if err != nil {
			return nil, err
		}
		q.JobIDs = append(q.JobIDs, id)
	}

	searchType := models.SearchExact
	if t := r.URL.Query().Get("search_type"); t != "" {
		searchType = models.SearchType(t)
	}
	for _, term := range r.URL.Query()["search"] {
		q.Search = append(q.Search, models.SearchTerm{Type: searchType, Term: term})
	}

	var err error
	if q.Range.Start, err = parseEpochParam(r, "start"); err != nil {
		return nil, err
	}
	if q.Range.End, err = parseEpochParam(r, "end"); err != nil {
		return nil, err
	}

	for _, field := range r.URL.Query()["sort"] {
		spec := models.SortSpec{Field: field}
		if strings.HasPrefix(field, "-") {
			spec = models.SortSpec{Field: field[1:], Descending: true}
		}
		q.Sort = append(q.Sort, spec)
	}

	if q.Offset, err = QueryInt(r, "offset", 0); err != nil {
		return nil, fmt.Errorf("%w: offset must be an integer", models.ErrTypeConversion)
	}
	if q.Limit, err = QueryInt(r, "limit", 0); err != nil {
		return nil, fmt.Errorf("%w: limit must be an integer", models.ErrTypeConversion)
	}

	return q, nil
}

// parseEpochParam reads an epoch-millisecond query parameter as absolute time.
func parseEpochParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be epoch milliseconds", models.ErrTypeConversion, name)
	}
	return time.UnixMilli(millis).UTC(), nil
}
