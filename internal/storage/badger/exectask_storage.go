package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// ExecTaskStorage implements the ExecTaskStore interface over Badger.
type ExecTaskStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewExecTaskStorage creates a new ExecTaskStorage instance
func NewExecTaskStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ExecTaskStore {
	return &ExecTaskStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ExecTaskStorage) ListByJobIDs(ctx context.Context, ids []models.JobID) ([]*models.ExecutionTaskEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var tasks []models.ExecutionTaskEntry
	query := badgerhold.Where("JobID").In(toInterfaces(ids)...)
	if err := s.db.Store().Find(&tasks, query); err != nil {
		return nil, fmt.Errorf("%w: exec task list: %v", models.ErrSourceUnavailable, err)
	}

	result := make([]*models.ExecutionTaskEntry, len(tasks))
	for i := range tasks {
		result[i] = &tasks[i]
	}
	return result, nil
}

func (s *ExecTaskStorage) Save(ctx context.Context, task *models.ExecutionTaskEntry) error {
	if task.JobID == "" {
		return fmt.Errorf("%w: exec task missing job id", models.ErrMalformedRecord)
	}
	if err := s.db.Store().Upsert(task.JobID.String(), task); err != nil {
		return fmt.Errorf("failed to save exec task: %w", err)
	}
	return nil
}
