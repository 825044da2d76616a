package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/handlers"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/services/lookup"
	"github.com/seqcentral/metior/internal/services/query"
	"github.com/seqcentral/metior/internal/services/resolver"
	"github.com/seqcentral/metior/internal/services/scheduler"
	"github.com/seqcentral/metior/internal/services/status"
	"github.com/seqcentral/metior/internal/services/writeback"
	storage "github.com/seqcentral/metior/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	LookupService    interfaces.LookupService
	ResolverService  interfaces.Resolver
	QueryService     *query.Service
	WritebackService *writeback.Service
	SchedulerService interfaces.SchedulerService
	StatusService    *status.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	JobsHandler      *handlers.JobsHandler
	StatusHandler    *handlers.StatusHandler
	WritebackHandler *handlers.WritebackHandler
}

// New constructs the full application graph: storage, services, handlers.
// Background jobs are registered here; the caller starts the scheduler once
// the server is up.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := storage.NewManager(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	if config.Storage.FixturesDir != "" {
		if err := storage.LoadFixturesFromFiles(context.Background(), storageManager, config.Storage.FixturesDir, logger); err != nil {
			logger.Warn().Err(err).Msg("Fixture loading failed")
		}
	}

	a.LookupService = lookup.NewService(storageManager.Narratives(), storageManager.Catalog(), &config.Lookup, logger)
	a.ResolverService = resolver.NewService(storageManager.ExecTasks(), a.LookupService, logger)
	a.QueryService = query.NewService(storageManager.Tracker(), a.ResolverService, logger)
	a.WritebackService = writeback.NewService(storageManager, a.ResolverService, &config.Writeback, logger)
	a.SchedulerService = scheduler.NewService(logger)
	a.StatusService = status.NewService(storageManager, a.LookupService, a.SchedulerService, config, logger)

	if err := a.registerJobs(); err != nil {
		storageManager.Close()
		return nil, err
	}

	a.APIHandler = handlers.NewAPIHandler(logger)
	a.JobsHandler = handlers.NewJobsHandler(a.QueryService, storageManager.Tracker(), a.ResolverService, logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StatusService, logger)
	a.WritebackHandler = handlers.NewWritebackHandler(a.WritebackService, logger)

	logger.Info().Str("environment", config.Environment).Msg("Application initialized")
	return a, nil
}

func (a *App) registerJobs() error {
	if a.Config.Writeback.Enabled {
		err := a.SchedulerService.RegisterJob(
			"writeback",
			a.Config.Writeback.Schedule,
			"Aggregate job activity into the metrics store",
			func() error {
				_, err := a.WritebackService.Run(context.Background())
				return err
			},
		)
		if err != nil {
			return fmt.Errorf("failed to register writeback job: %w", err)
		}
	}

	err := a.SchedulerService.RegisterJob(
		"narrative-refresh",
		"*/15 * * * *",
		"Incrementally refresh the narrative lookup cache",
		func() error {
			return a.LookupService.RefreshNarratives(context.Background())
		},
	)
	if err != nil {
		return fmt.Errorf("failed to register narrative refresh job: %w", err)
	}

	return nil
}

// Close releases application resources in reverse construction order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
