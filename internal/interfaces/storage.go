package interfaces

import (
	"context"
	"time"

	"github.com/seqcentral/metior/internal/models"
)

// TrackerStore is the read API over the job-tracker source. Writes exist only
// for fixture loading and tests; the aggregation engine never mutates source
// records.
type TrackerStore interface {
	ListByUsers(ctx context.Context, users []string, r models.TimeRange) ([]*models.JobTrackerEntry, error)
	ListByIDs(ctx context.Context, ids []models.JobID) ([]*models.JobTrackerEntry, error)
	List(ctx context.Context, opts *models.TrackerListOptions) ([]*models.JobTrackerEntry, error)
	Count(ctx context.Context, opts *models.TrackerListOptions) (int, error)
	Save(ctx context.Context, entry *models.JobTrackerEntry) error
}

// ExecTaskStore is the read API over the execution-engine source.
type ExecTaskStore interface {
	ListByJobIDs(ctx context.Context, ids []models.JobID) ([]*models.ExecutionTaskEntry, error)
	Save(ctx context.Context, task *models.ExecutionTaskEntry) error
}

// CatalogStore is the read API over the app catalog's client-group table.
type CatalogStore interface {
	ListClientGroups(ctx context.Context) ([]*models.ClientGroupEntry, error)
	Save(ctx context.Context, entry *models.ClientGroupEntry) error
}

// NarrativeStore is the read API over the workspace/narrative metadata
// source. ListModifiedSince supports the lookup cache's incremental refresh.
type NarrativeStore interface {
	ListModifiedSince(ctx context.Context, since time.Time) ([]*models.NarrativeEntry, error)
	Save(ctx context.Context, entry *models.NarrativeEntry) error
}

// SummaryStore is the metrics store write API. Upserts are idempotent on
// each record's identity key and report whether the record was newly
// inserted (true) or modified in place (false).
type SummaryStore interface {
	UpsertUserSummary(ctx context.Context, s *models.UserSummary) (bool, error)
	UpsertActivitySummary(ctx context.Context, s *models.ActivitySummary) (bool, error)
	UpsertNarrativeSummary(ctx context.Context, s *models.NarrativeSummary) (bool, error)
	Counts(ctx context.Context) (users, activity, narratives int, err error)
}

// StorageManager owns the database connection and hands out the per-source
// stores.
type StorageManager interface {
	Tracker() TrackerStore
	ExecTasks() ExecTaskStore
	Catalog() CatalogStore
	Narratives() NarrativeStore
	Summaries() SummaryStore
	Counts(ctx context.Context) (*models.StoreCounts, error)
	Close() error
}
