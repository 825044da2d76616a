package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/models"
)

// fakeExecTasks serves a fixed task set keyed by job id.
type fakeExecTasks struct {
	tasks map[models.JobID]*models.ExecutionTaskEntry
	err   error
}

func (f *fakeExecTasks) ListByJobIDs(ctx context.Context, ids []models.JobID) ([]*models.ExecutionTaskEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.ExecutionTaskEntry
	for _, id := range ids {
		if t, ok := f.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeExecTasks) Save(ctx context.Context, task *models.ExecutionTaskEntry) error {
	return nil
}

// fakeLookup serves fixed narrative and client-group tables.
type fakeLookup struct {
	narratives map[string]models.NarrativeInfo
	groups     map[string][]string
}

func (f *fakeLookup) NarrativeFor(ctx context.Context, wsid string) (models.NarrativeInfo, bool, error) {
	info, ok := f.narratives[wsid]
	return info, ok, nil
}

func (f *fakeLookup) ClientGroupTable(ctx context.Context) (map[string][]string, error) {
	return f.groups, nil
}

func (f *fakeLookup) RefreshNarratives(ctx context.Context) error { return nil }
func (f *fakeLookup) Status() models.LookupStatus                 { return models.LookupStatus{} }

func ms(v int64) time.Time { return time.UnixMilli(v).UTC() }

func newService(tasks map[models.JobID]*models.ExecutionTaskEntry, lookup *fakeLookup) *Service {
	if lookup == nil {
		lookup = &fakeLookup{}
	}
	return NewService(&fakeExecTasks{tasks: tasks}, lookup, arbor.NewLogger())
}

func TestResolveWithExecTask(t *testing.T) {
	started := ms(1500000937695)
	entry := &models.JobTrackerEntry{
		ID:        "596832a4e4b08b65f9ff5d6f",
		User:      "tgu2",
		AuthStrat: models.AuthStratWorkspace,
		AuthParam: "15206",
		Created:   ms(1500000932849),
		Started:   &started,
		Updated:   ms(1500001203182),
		Complete:  true,
		Status:    "done",
	}
	task := &models.ExecutionTaskEntry{
		JobID: entry.ID,
		JobInput: &models.JobInput{
			AppID:       "kb_deseq/run_DESeq2",
			Method:      "kb_deseq.run_deseq2_app",
			WorkspaceID: "15206",
			Params:      []models.JobInputParam{{Workspace: "tgu2:1481170361822"}},
		},
	}

	svc := newService(map[models.JobID]*models.ExecutionTaskEntry{entry.ID: task}, nil)

	resolved, err := svc.Resolve(context.Background(), []*models.JobTrackerEntry{entry})
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	r := resolved[0]
	assert.Equal(t, models.JobStateCompleted, r.State)
	assert.Equal(t, "15206", r.WorkspaceID)
	assert.Equal(t, "kb_deseq/run_DESeq2", r.AppID)
	assert.Equal(t, "kb_deseq.run_deseq2_app", r.Method)
	assert.Equal(t, "tgu2:1481170361822", r.WorkspaceName)

	require.NotNil(t, r.FinishTime)
	assert.Equal(t, int64(1500001203182), *r.FinishTime)
	require.NotNil(t, r.RunTime)
	assert.Equal(t, int64(1500001203182-1500000937695), *r.RunTime)
	assert.Nil(t, r.RunningTime)
	assert.Nil(t, r.TimeInQueue)
}

func TestResolveWithoutExecTask(t *testing.T) {
	started := ms(1500000937695)
	entry := &models.JobTrackerEntry{
		ID:        "596832a4e4b08b65f9ff5d6f",
		User:      "tgu2",
		AuthStrat: models.AuthStratDefault,
		Created:   ms(1500000932849),
		Started:   &started,
		Updated:   ms(1500001203182),
		Complete:  true,
		Status:    "done",
		Desc:      "Execution engine job for kb_rnaseq_downloader.export_rna_seq_expression_as_zip",
	}

	svc := newService(nil, nil)

	resolved, err := svc.Resolve(context.Background(), []*models.JobTrackerEntry{entry})
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	r := resolved[0]
	assert.Equal(t, "kb_rnaseq_downloader.export_rna_seq_expression_as_zip", r.Method)
	assert.Equal(t, "kb_rnaseq_downloader/export_rna_seq_expression_as_zip", r.AppID)
	assert.Empty(t, r.WorkspaceID)
	assert.Empty(t, r.WorkspaceName)
	assert.Equal(t, models.DefaultClientGroups, r.ClientGroups)
}

func TestResolveNarrativeAttachment(t *testing.T) {
	entry := &models.JobTrackerEntry{
		ID:        "596832a4e4b08b65f9ff5d6f",
		User:      "alice",
		AuthStrat: models.AuthStratWorkspace,
		AuthParam: "15206",
		Created:   ms(1500000932849),
		Updated:   ms(1500000932849),
	}

	tests := []struct {
		name        string
		narrative   models.NarrativeInfo
		found       bool
		wantName    string
		wantVersion int
	}{
		{"named and versioned", models.NarrativeInfo{Name: "RNA-seq analysis", Version: 7}, true, "RNA-seq analysis", 7},
		{"zero version rejected", models.NarrativeInfo{Name: "RNA-seq analysis", Version: 0}, true, "", 0},
		{"empty name rejected", models.NarrativeInfo{Name: "", Version: 3}, true, "", 0},
		{"no match", models.NarrativeInfo{}, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{}
			if tt.found {
				lookup.narratives = map[string]models.NarrativeInfo{"15206": tt.narrative}
			}
			svc := newService(nil, lookup)

			resolved, err := svc.Resolve(context.Background(), []*models.JobTrackerEntry{entry})
			require.NoError(t, err)
			require.Len(t, resolved, 1)
			assert.Equal(t, tt.wantName, resolved[0].NarrativeName)
			assert.Equal(t, tt.wantVersion, resolved[0].NarrativeObjNo)
		})
	}
}

func TestResolveClientGroupsCaseInsensitive(t *testing.T) {
	entry := &models.JobTrackerEntry{
		ID:      "596832a4e4b08b65f9ff5d6f",
		User:    "alice",
		Created: ms(1500000932849),
		Updated: ms(1500000932849),
		Desc:    "job for kb_deseq.run_DESeq2",
	}
	lookup := &fakeLookup{
		groups: map[string][]string{"KB_DESEQ/run_deseq2": {"bigmem"}},
	}

	svc := newService(nil, lookup)

	resolved, err := svc.Resolve(context.Background(), []*models.JobTrackerEntry{entry})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, []string{"bigmem"}, resolved[0].ClientGroups)
}

func TestResolveIdempotent(t *testing.T) {
	started := ms(1500000937695)
	entry := &models.JobTrackerEntry{
		ID:       "596832a4e4b08b65f9ff5d6f",
		User:     "tgu2",
		Created:  ms(1500000932849),
		Started:  &started,
		Updated:  ms(1500001203182),
		Complete: true,
		Status:   "done",
	}
	svc := newService(nil, nil)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, []*models.JobTrackerEntry{entry})
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, []*models.JobTrackerEntry{entry})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveMalformedEntryAborts(t *testing.T) {
	good := &models.JobTrackerEntry{
		ID:      "596832a4e4b08b65f9ff5d6f",
		User:    "alice",
		Created: ms(1500000932849),
		Updated: ms(1500000932849),
	}
	bad := &models.JobTrackerEntry{User: "bob"} // no id, no creation time

	svc := newService(nil, nil)

	_, err := svc.Resolve(context.Background(), []*models.JobTrackerEntry{good, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedRecord)
}

func TestMethodFromDesc(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Execution engine job for kb_deseq.run_deseq2_app", "kb_deseq.run_deseq2_app"},
		{"plain description without method", ""},
		{"", ""},
		{"kb_deseq.run_deseq2_app", "kb_deseq.run_deseq2_app"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, methodFromDesc(tt.desc), "desc=%q", tt.desc)
	}
}
