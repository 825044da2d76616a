package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// NarrativeStorage implements the NarrativeStore interface over Badger.
type NarrativeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewNarrativeStorage creates a new NarrativeStorage instance
func NewNarrativeStorage(db *BadgerDB, logger arbor.ILogger) interfaces.NarrativeStore {
	return &NarrativeStorage{
		db:     db,
		logger: logger,
	}
}

// ListModifiedSince returns narrative entries saved strictly after the given
// instant. A zero instant returns the full collection.
func (s *NarrativeStorage) ListModifiedSince(ctx context.Context, since time.Time) ([]*models.NarrativeEntry, error) {
	var entries []models.NarrativeEntry
	var err error
	if since.IsZero() {
		err = s.db.Store().Find(&entries, nil)
	} else {
		err = s.db.Store().Find(&entries, badgerhold.Where("LastSaved").Gt(since))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: narrative list: %v", models.ErrSourceUnavailable, err)
	}

	result := make([]*models.NarrativeEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

func (s *NarrativeStorage) Save(ctx context.Context, entry *models.NarrativeEntry) error {
	if entry.WorkspaceID == "" {
		return fmt.Errorf("%w: narrative entry missing workspace id", models.ErrMalformedRecord)
	}
	if err := s.db.Store().Upsert(entry.WorkspaceID, entry); err != nil {
		return fmt.Errorf("failed to save narrative entry: %w", err)
	}
	return nil
}
