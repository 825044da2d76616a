package interfaces

import (
	"context"

	"github.com/seqcentral/metior/internal/models"
)

// Resolver joins tracker entries with execution tasks and workspace/catalog
// metadata into canonical job-state records. Resolution is a pure function
// of the fetched snapshots; it either completes for the full set or fails.
type Resolver interface {
	Resolve(ctx context.Context, entries []*models.JobTrackerEntry) ([]*models.ResolvedJobState, error)
}

// LookupService resolves workspace ids to narrative display metadata and app
// ids to catalog client groups, backed by the shared process-wide cache.
type LookupService interface {
	NarrativeFor(ctx context.Context, workspaceID string) (models.NarrativeInfo, bool, error)
	ClientGroupTable(ctx context.Context) (map[string][]string, error)
	RefreshNarratives(ctx context.Context) error
	Status() models.LookupStatus
}

// SchedulerService runs registered background jobs on cron schedules.
type SchedulerService interface {
	RegisterJob(name, schedule, description string, handler func() error) error
	Start() error
	Stop()
	TriggerJob(name string) error
	Jobs() []models.ScheduledJobStatus
}
