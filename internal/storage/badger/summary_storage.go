package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// SummaryStorage implements the SummaryStore interface over Badger. Upserts
// check for an existing record first so callers can count inserted vs
// modified separately.
type SummaryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSummaryStorage creates a new SummaryStorage instance
func NewSummaryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SummaryStore {
	return &SummaryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SummaryStorage) UpsertUserSummary(ctx context.Context, summary *models.UserSummary) (bool, error) {
	var existing models.UserSummary
	inserted, err := s.checkExisting(summary.Key(), &existing)
	if err != nil {
		return false, err
	}
	if err := s.db.Store().Upsert(summary.Key(), summary); err != nil {
		return false, fmt.Errorf("failed to upsert user summary: %w", err)
	}
	return inserted, nil
}

func (s *SummaryStorage) UpsertActivitySummary(ctx context.Context, summary *models.ActivitySummary) (bool, error) {
	var existing models.ActivitySummary
	inserted, err := s.checkExisting(summary.Key(), &existing)
	if err != nil {
		return false, err
	}
	if err := s.db.Store().Upsert(summary.Key(), summary); err != nil {
		return false, fmt.Errorf("failed to upsert activity summary: %w", err)
	}
	return inserted, nil
}

func (s *SummaryStorage) UpsertNarrativeSummary(ctx context.Context, summary *models.NarrativeSummary) (bool, error) {
	var existing models.NarrativeSummary
	inserted, err := s.checkExisting(summary.Key(), &existing)
	if err != nil {
		return false, err
	}
	if err := s.db.Store().Upsert(summary.Key(), summary); err != nil {
		return false, fmt.Errorf("failed to upsert narrative summary: %w", err)
	}
	return inserted, nil
}

func (s *SummaryStorage) Counts(ctx context.Context) (users, activity, narratives int, err error) {
	u, err := s.db.Store().Count(&models.UserSummary{}, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count user summaries: %w", err)
	}
	a, err := s.db.Store().Count(&models.ActivitySummary{}, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count activity summaries: %w", err)
	}
	n, err := s.db.Store().Count(&models.NarrativeSummary{}, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count narrative summaries: %w", err)
	}
	return int(u), int(a), int(n), nil
}

// checkExisting reports whether the upsert will insert a new record (true) or
// modify an existing one (false).
func (s *SummaryStorage) checkExisting(key string, target interface{}) (bool, error) {
	err := s.db.Store().Get(key, target)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, badgerhold.ErrNotFound) {
		return true, nil
	}
	return false, fmt.Errorf("failed to read existing summary: %w", err)
}
