package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// Manager owns the Badger connection and the per-source stores.
type Manager struct {
	db        *BadgerDB
	logger    arbor.ILogger
	tracker   interfaces.TrackerStore
	execTasks interfaces.ExecTaskStore
	catalog   interfaces.CatalogStore
	narrative interfaces.NarrativeStore
	summaries interfaces.SummaryStore
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires up all stores.
func NewManager(logger arbor.ILogger, config *common.StorageConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, &config.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Manager{
		db:        db,
		logger:    logger,
		tracker:   NewTrackerStorage(db, logger),
		execTasks: NewExecTaskStorage(db, logger),
		catalog:   NewCatalogStorage(db, logger),
		narrative: NewNarrativeStorage(db, logger),
		summaries: NewSummaryStorage(db, logger),
	}, nil
}

func (m *Manager) Tracker() interfaces.TrackerStore      { return m.tracker }
func (m *Manager) ExecTasks() interfaces.ExecTaskStore   { return m.execTasks }
func (m *Manager) Catalog() interfaces.CatalogStore      { return m.catalog }
func (m *Manager) Narratives() interfaces.NarrativeStore { return m.narrative }
func (m *Manager) Summaries() interfaces.SummaryStore    { return m.summaries }

// Counts reports per-collection record counts for the status endpoint.
func (m *Manager) Counts(ctx context.Context) (*models.StoreCounts, error) {
	counts := &models.StoreCounts{}

	tracker, err := m.db.Store().Count(&models.JobTrackerEntry{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracker entries: %w", err)
	}
	counts.TrackerJobs = int(tracker)

	tasks, err := m.db.Store().Count(&models.ExecutionTaskEntry{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count exec tasks: %w", err)
	}
	counts.ExecTasks = int(tasks)

	groups, err := m.db.Store().Count(&models.ClientGroupEntry{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count client groups: %w", err)
	}
	counts.ClientGroups = int(groups)

	narratives, err := m.db.Store().Count(&models.NarrativeEntry{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count narratives: %w", err)
	}
	counts.Narratives = int(narratives)

	users, activity, narrativeSummaries, err := m.summaries.Counts(ctx)
	if err != nil {
		return nil, err
	}
	counts.UserSummaries = users
	counts.ActivitySummaries = activity
	counts.NarrativeSummaries = narrativeSummaries

	return counts, nil
}

// Close closes the database connection.
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage manager")
	return m.db.Close()
}
