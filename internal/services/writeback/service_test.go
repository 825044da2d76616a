package writeback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/models"
	storage "github.com/seqcentral/metior/internal/storage/badger"
)

// passthroughResolver seeds resolved records straight from tracker entries;
// the pipeline only reads user, creation time, and workspace id.
type passthroughResolver struct{}

func (passthroughResolver) Resolve(ctx context.Context, entries []*models.JobTrackerEntry) ([]*models.ResolvedJobState, error) {
	out := make([]*models.ResolvedJobState, 0, len(entries))
	for _, e := range entries {
		r := &models.ResolvedJobState{
			JobID:            e.ID.String(),
			User:             e.User,
			CreationTime:     e.Created.UnixMilli(),
			ModificationTime: e.Updated.UnixMilli(),
			State:            models.DeriveJobState(e),
			ClientGroups:     models.DefaultClientGroups,
		}
		if e.AuthStrat == models.AuthStratWorkspace {
			r.WorkspaceID = e.AuthParam
		}
		out = append(out, r)
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *storage.Manager) {
	t.Helper()

	manager, err := storage.NewManager(arbor.NewLogger(), &common.StorageConfig{
		Badger: common.BadgerConfig{Path: t.TempDir()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	svc := NewService(manager, passthroughResolver{}, &common.WritebackConfig{
		Enabled:     true,
		WindowHours: 48,
	}, arbor.NewLogger())

	return svc, manager
}

func seedJobs(t *testing.T, manager *storage.Manager, end time.Time) {
	t.Helper()
	ctx := context.Background()

	jobs := []*models.JobTrackerEntry{
		{ID: "5dd7f5e4e4b0d82af0eafa01", User: "alice", AuthStrat: models.AuthStratWorkspace, AuthParam: "10001", Created: end.Add(-3 * time.Hour), Updated: end.Add(-2 * time.Hour)},
		{ID: "5dd7f5e4e4b0d82af0eafa02", User: "alice", AuthStrat: models.AuthStratWorkspace, AuthParam: "10001", Created: end.Add(-2 * time.Hour), Updated: end.Add(-time.Hour)},
		{ID: "5dd7f5e4e4b0d82af0eafa03", User: "bob", Created: end.Add(-time.Hour), Updated: end.Add(-time.Hour)},
		// Outside the 48h window, must not be aggregated
		{ID: "5dd7f5e4e4b0d82af0eafa04", User: "carol", Created: end.Add(-72 * time.Hour), Updated: end.Add(-72 * time.Hour)},
	}
	for _, j := range jobs {
		require.NoError(t, manager.Tracker().Save(ctx, j))
	}

	require.NoError(t, manager.Narratives().Save(ctx, &models.NarrativeEntry{
		WorkspaceID: "10001",
		Name:        "alice:narrative",
		LastSaved:   end.Add(-time.Hour),
		Metadata:    map[string]string{"narrative_nice_name": "Alice's work", "narrative": "4"},
	}))
}

func TestRunAggregatesWindow(t *testing.T) {
	svc, manager := newTestService(t)
	end := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	seedJobs(t, manager, end)

	stats, err := svc.RunAt(context.Background(), end)
	require.NoError(t, err)

	// alice + bob summaries, one activity row per user/workspace/day pair,
	// one narrative mirror; carol's job is outside the window
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 2, stats.Activity)
	assert.Equal(t, 1, stats.Narrative)
	assert.Equal(t, stats.Users+stats.Activity+stats.Narrative, stats.Inserted)
	assert.Zero(t, stats.Modified)
	assert.NotEmpty(t, stats.RunID)
	assert.False(t, stats.Finished.Before(stats.Started))

	counts, err := manager.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.UserSummaries)
	assert.Equal(t, 2, counts.ActivitySummaries)
	assert.Equal(t, 1, counts.NarrativeSummaries)
}

func TestRunIsIdempotentOnIdentityKeys(t *testing.T) {
	svc, manager := newTestService(t)
	end := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	seedJobs(t, manager, end)

	first, err := svc.RunAt(context.Background(), end)
	require.NoError(t, err)
	require.NotZero(t, first.Inserted)

	second, err := svc.RunAt(context.Background(), end)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted, "second run must only modify existing records")
	assert.Equal(t, first.Inserted, second.Modified)
	assert.NotEqual(t, first.RunID, second.RunID)

	counts, err := manager.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.UserSummaries)
}

func TestRunEmptyWindow(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.RunAt(context.Background(), time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, stats.Inserted)
	assert.Zero(t, stats.Modified)
}
