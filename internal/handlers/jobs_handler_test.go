package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/models"
	"github.com/seqcentral/metior/internal/services/query"
)

type fakeTracker struct {
	entries []*models.JobTrackerEntry
}

func (f *fakeTracker) ListByUsers(ctx context.Context, users []string, r models.TimeRange) ([]*models.JobTrackerEntry, error) {
	var out []*models.JobTrackerEntry
	for _, e := range f.entries {
		if e.Created.Before(r.Start) || e.Created.After(r.End) {
			continue
		}
		if len(users) > 0 {
			match := false
			for _, u := range users {
				if u == e.User {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeTracker) ListByIDs(ctx context.Context, ids []models.JobID) ([]*models.JobTrackerEntry, error) {
	var out []*models.JobTrackerEntry
	for _, e := range f.entries {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeTracker) List(ctx context.Context, opts *models.TrackerListOptions) ([]*models.JobTrackerEntry, error) {
	return f.entries, nil
}

func (f *fakeTracker) Count(ctx context.Context, opts *models.TrackerListOptions) (int, error) {
	return len(f.entries), nil
}

func (f *fakeTracker) Save(ctx context.Context, entry *models.JobTrackerEntry) error { return nil }

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, entries []*models.JobTrackerEntry) ([]*models.ResolvedJobState, error) {
	out := make([]*models.ResolvedJobState, 0, len(entries))
	for _, e := range entries {
		out = append(out, &models.ResolvedJobState{
			JobID:            e.ID.String(),
			User:             e.User,
			CreationTime:     e.Created.UnixMilli(),
			ModificationTime: e.Updated.UnixMilli(),
			State:            models.DeriveJobState(e),
			ClientGroups:     models.DefaultClientGroups,
		})
	}
	return out, nil
}

func newTestHandler(t *testing.T) *JobsHandler {
	t.Helper()

	now := time.Now().UTC()
	tracker := &fakeTracker{entries: []*models.JobTrackerEntry{
		{ID: "5dd7f5e4e4b0d82af0eafa01", User: "alice", Created: now.Add(-time.Hour), Updated: now},
		{ID: "5dd7f5e4e4b0d82af0eafa02", User: "bob", Created: now.Add(-time.Hour), Updated: now},
	}}
	logger := arbor.NewLogger()
	queryService := query.NewService(tracker, fakeResolver{}, logger)

	return NewJobsHandler(queryService, tracker, fakeResolver{}, logger)
}

func TestListJobsHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	req.Header.Set(HeaderUser, "admin")
	req.Header.Set(HeaderAdmin, "true")
	w := httptest.NewRecorder()

	h.ListJobsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.QueryResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 2, result.FoundCount)
	assert.Len(t, result.JobStates, 2)
}

func TestListJobsHandlerNonAdmin(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	req.Header.Set(HeaderUser, "alice")
	w := httptest.NewRecorder()

	h.ListJobsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.QueryResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 1, result.TotalCount)
	for _, r := range result.JobStates {
		assert.Equal(t, "alice", r.User)
	}
}

func TestListJobsHandlerBadSortField(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs?sort=flavor", nil)
	req.Header.Set(HeaderUser, "admin")
	req.Header.Set(HeaderAdmin, "true")
	w := httptest.NewRecorder()

	h.ListJobsHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobsHandlerMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/api/jobs", nil)
	w := httptest.NewRecorder()

	h.ListJobsHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetJobHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs/5dd7f5e4e4b0d82af0eafa01", nil)
	req.Header.Set(HeaderUser, "alice")
	w := httptest.NewRecorder()

	h.GetJobHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var state models.ResolvedJobState
	require.NoError(t, json.NewDecoder(w.Body).Decode(&state))
	assert.Equal(t, "5dd7f5e4e4b0d82af0eafa01", state.JobID)
	assert.Equal(t, "alice", state.User)
}

func TestGetJobHandlerForbiddenForOtherUser(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs/5dd7f5e4e4b0d82af0eafa02", nil)
	req.Header.Set(HeaderUser, "alice")
	w := httptest.NewRecorder()

	h.GetJobHandler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetJobHandlerInvalidID(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs/not-an-id", nil)
	req.Header.Set(HeaderUser, "alice")
	w := httptest.NewRecorder()

	h.GetJobHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobHandlerNotFound(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs/5dd7f5e4e4b0d82af0eafa99", nil)
	req.Header.Set(HeaderUser, "alice")
	req.Header.Set(HeaderAdmin, "true")
	w := httptest.NewRecorder()

	h.GetJobHandler(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
