package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// CatalogStorage implements the CatalogStore interface over Badger.
type CatalogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCatalogStorage creates a new CatalogStorage instance
func NewCatalogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CatalogStore {
	return &CatalogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CatalogStorage) ListClientGroups(ctx context.Context) ([]*models.ClientGroupEntry, error) {
	var entries []models.ClientGroupEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("%w: client group list: %v", models.ErrSourceUnavailable, err)
	}

	result := make([]*models.ClientGroupEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

func (s *CatalogStorage) Save(ctx context.Context, entry *models.ClientGroupEntry) error {
	if entry.AppID == "" {
		return fmt.Errorf("%w: client group entry missing app id", models.ErrMalformedRecord)
	}
	if err := s.db.Store().Upsert(entry.AppID, entry); err != nil {
		return fmt.Errorf("failed to save client group entry: %w", err)
	}
	return nil
}
