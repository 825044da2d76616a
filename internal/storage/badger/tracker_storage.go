package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// TrackerStorage implements the TrackerStore interface over Badger. It is a
// thin read-only accessor: projection and joining happen in the resolver.
type TrackerStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTrackerStorage creates a new TrackerStorage instance
func NewTrackerStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TrackerStore {
	return &TrackerStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TrackerStorage) ListByUsers(ctx context.Context, users []string, r models.TimeRange) ([]*models.JobTrackerEntry, error) {
	query := badgerhold.Where("Created").Ge(r.Start).And("Created").Le(r.End)
	if len(users) > 0 {
		query = query.And("User").In(toInterfaces(users)...)
	}

	var entries []models.JobTrackerEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("%w: tracker list by users: %v", models.ErrSourceUnavailable, err)
	}
	return toPointers(entries), nil
}

func (s *TrackerStorage) ListByIDs(ctx context.Context, ids []models.JobID) ([]*models.JobTrackerEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entries []models.JobTrackerEntry
	query := badgerhold.Where("ID").In(toInterfaces(ids)...)
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("%w: tracker list by ids: %v", models.ErrSourceUnavailable, err)
	}
	return toPointers(entries), nil
}

func (s *TrackerStorage) List(ctx context.Context, opts *models.TrackerListOptions) ([]*models.JobTrackerEntry, error) {
	query := s.buildQuery(opts)

	if opts != nil {
		sortBy := opts.SortBy
		if sortBy == "" {
			sortBy = "Created"
		}
		query = query.SortBy(sortBy)
		if opts.SortDesc {
			query = query.Reverse()
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var entries []models.JobTrackerEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("%w: tracker list: %v", models.ErrSourceUnavailable, err)
	}
	return toPointers(entries), nil
}

func (s *TrackerStorage) Count(ctx context.Context, opts *models.TrackerListOptions) (int, error) {
	count, err := s.db.Store().Count(&models.JobTrackerEntry{}, s.buildQuery(opts))
	if err != nil {
		return 0, fmt.Errorf("%w: tracker count: %v", models.ErrSourceUnavailable, err)
	}
	return int(count), nil
}

func (s *TrackerStorage) Save(ctx context.Context, entry *models.JobTrackerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.db.Store().Upsert(entry.ID.String(), entry); err != nil {
		return fmt.Errorf("failed to save tracker entry: %w", err)
	}
	return nil
}

// buildQuery applies the restriction parts of opts (users, ids, time window),
// shared by List and Count.
func (s *TrackerStorage) buildQuery(opts *models.TrackerListOptions) *badgerhold.Query {
	query := badgerhold.Where("ID").Ne(models.JobID(""))
	if opts == nil {
		return query
	}
	if len(opts.Users) > 0 {
		query = query.And("User").In(toInterfaces(opts.Users)...)
	}
	if len(opts.JobIDs) > 0 {
		query = query.And("ID").In(toInterfaces(opts.JobIDs)...)
	}
	if !opts.Start.IsZero() {
		query = query.And("Created").Ge(opts.Start)
	}
	if !opts.End.IsZero() {
		query = query.And("Created").Le(opts.End)
	}
	return query
}

// toInterfaces widens a slice for badgerhold's In criterion.
func toInterfaces[T any](vals []T) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func toPointers(entries []models.JobTrackerEntry) []*models.JobTrackerEntry {
	result := make([]*models.JobTrackerEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result
}
