// -----------------------------------------------------------------------
// Metrics write-back pipeline - materializes user/activity/narrative
// summaries into the metrics store
// -----------------------------------------------------------------------

package writeback

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// Service aggregates resolved job states over a trailing window and upserts
// summary records into the metrics store. Upserts are idempotent on each
// record's identity key; each run reports inserted vs modified counts.
type Service struct {
	tracker    interfaces.TrackerStore
	resolver   interfaces.Resolver
	narratives interfaces.NarrativeStore
	summaries  interfaces.SummaryStore
	window     time.Duration
	logger     arbor.ILogger
}

// NewService creates a new writeback service
func NewService(storage interfaces.StorageManager, resolver interfaces.Resolver, config *common.WritebackConfig, logger arbor.ILogger) *Service {
	return &Service{
		tracker:    storage.Tracker(),
		resolver:   resolver,
		narratives: storage.Narratives(),
		summaries:  storage.Summaries(),
		window:     time.Duration(config.WindowHours) * time.Hour,
		logger:     logger,
	}
}

// Run executes one pipeline pass over the trailing window ending now.
func (s *Service) Run(ctx context.Context) (*models.WritebackStats, error) {
	return s.RunAt(ctx, time.Now().UTC())
}

// RunAt is Run with an explicit window end, so aggregation is testable at a
// fixed instant.
func (s *Service) RunAt(ctx context.Context, end time.Time) (*models.WritebackStats, error) {
	stats := &models.WritebackStats{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
	}
	window := models.TimeRange{Start: end.Add(-s.window), End: end}

	s.logger.Info().
		Str("run_id", stats.RunID).
		Str("start", window.Start.Format(common.PlatformTimeFormat)).
		Str("end", window.End.Format(common.PlatformTimeFormat)).
		Msg("Starting write-back run")

	entries, err := s.tracker.ListByUsers(ctx, nil, window)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolver.Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}

	if err := s.writeUserSummaries(ctx, resolved, stats); err != nil {
		return nil, err
	}
	if err := s.writeActivitySummaries(ctx, resolved, stats); err != nil {
		return nil, err
	}
	if err := s.writeNarrativeSummaries(ctx, window.Start, stats); err != nil {
		return nil, err
	}

	stats.Finished = time.Now().UTC()
	s.logger.Info().
		Str("run_id", stats.RunID).
		Int("inserted", stats.Inserted).
		Int("modified", stats.Modified).
		Int("users", stats.Users).
		Int("activity", stats.Activity).
		Int("narratives", stats.Narrative).
		Msg("Write-back run complete")

	return stats, nil
}

func (s *Service) writeUserSummaries(ctx context.Context, resolved []*models.ResolvedJobState, stats *models.WritebackStats) error {
	byUser := make(map[string]*models.UserSummary)
	for _, r := range resolved {
		summary, ok := byUser[r.User]
		if !ok {
			summary = &models.UserSummary{
				User:     r.User,
				FirstJob: r.CreationTime,
				LastJob:  r.CreationTime,
			}
			byUser[r.User] = summary
		}
		if r.CreationTime < summary.FirstJob {
			summary.FirstJob = r.CreationTime
		}
		if r.CreationTime > summary.LastJob {
			summary.LastJob = r.CreationTime
		}
		summary.JobCount++
	}

	now := time.Now().UnixMilli()
	for _, user := range sortedKeys(byUser) {
		summary := byUser[user]
		summary.LastUpdated = now
		inserted, err := s.summaries.UpsertUserSummary(ctx, summary)
		if err != nil {
			return fmt.Errorf("user summary %q: %w", user, err)
		}
		s.count(stats, inserted)
		stats.Users++
	}
	return nil
}

func (s *Service) writeActivitySummaries(ctx context.Context, resolved []*models.ResolvedJobState, stats *models.WritebackStats) error {
	byKey := make(map[string]*models.ActivitySummary)
	for _, r := range resolved {
		day := time.UnixMilli(r.CreationTime).UTC().Format("2006-01-02")
		summary := &models.ActivitySummary{User: r.User, WorkspaceID: r.WorkspaceID, Day: day}
		if existing, ok := byKey[summary.Key()]; ok {
			summary = existing
		} else {
			byKey[summary.Key()] = summary
		}
		summary.JobCount++
	}

	now := time.Now().UnixMilli()
	for _, key := range sortedKeys(byKey) {
		summary := byKey[key]
		summary.LastUpdated = now
		inserted, err := s.summaries.UpsertActivitySummary(ctx, summary)
		if err != nil {
			return fmt.Errorf("activity summary %q: %w", key, err)
		}
		s.count(stats, inserted)
		stats.Activity++
	}
	return nil
}

func (s *Service) writeNarrativeSummaries(ctx context.Context, since time.Time, stats *models.WritebackStats) error {
	entries, err := s.narratives.ListModifiedSince(ctx, since)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, e := range entries {
		summary := &models.NarrativeSummary{
			WorkspaceID: e.WorkspaceID,
			Name:        e.Name,
			NiceName:    e.NiceName(),
			Version:     e.Version(),
			Deleted:     e.Deleted,
			LastSaved:   e.LastSaved.UnixMilli(),
			LastUpdated: now,
		}
		inserted, err := s.summaries.UpsertNarrativeSummary(ctx, summary)
		if err != nil {
			return fmt.Errorf("narrative summary %q: %w", e.WorkspaceID, err)
		}
		s.count(stats, inserted)
		stats.Narrative++
	}
	return nil
}

func (s *Service) count(stats *models.WritebackStats, inserted bool) {
	if inserted {
		stats.Inserted++
	} else {
		stats.Modified++
	}
}

// sortedKeys gives deterministic upsert order, which keeps run logs and test
// expectations stable.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
