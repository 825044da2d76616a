package status

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// Service assembles the aggregate application status for admin tooling.
type Service struct {
	storage   interfaces.StorageManager
	lookup    interfaces.LookupService
	scheduler interfaces.SchedulerService
	config    *common.Config
	logger    arbor.ILogger
}

// NewService creates a new status service
func NewService(storage interfaces.StorageManager, lookup interfaces.LookupService, scheduler interfaces.SchedulerService, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		lookup:    lookup,
		scheduler: scheduler,
		config:    config,
		logger:    logger,
	}
}

// Status reports version, store counts, cache state, and scheduler jobs.
func (s *Service) Status(ctx context.Context) (*models.AppStatus, error) {
	counts, err := s.storage.Counts(ctx)
	if err != nil {
		return nil, err
	}

	status := &models.AppStatus{
		Version:     common.GetVersion(),
		Environment: s.config.Environment,
		Counts:      *counts,
		Lookup:      s.lookup.Status(),
	}
	if s.scheduler != nil {
		status.Scheduler = s.scheduler.Jobs()
	}
	return status, nil
}
