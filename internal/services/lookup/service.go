// -----------------------------------------------------------------------
// Narrative/client-group lookup - process-wide cache over the workspace
// and catalog sources, guarded by a bounded-wait lock
// -----------------------------------------------------------------------

package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// Service is the shared narrative/client-group cache. One instance is
// constructed at startup and injected into the resolver; all mutable state
// lives behind the bounded-wait lock so concurrent requests never observe a
// partially-merged map.
type Service struct {
	narratives interfaces.NarrativeStore
	catalog    interfaces.CatalogStore
	logger     arbor.ILogger

	lockTimeout     time.Duration
	refreshInterval time.Duration
	limiter         *rate.Limiter

	// lock is a single-slot semaphore; acquire gives up after lockTimeout
	// instead of blocking indefinitely.
	lock chan struct{}

	narrativeMap map[string]models.NarrativeInfo
	maxSaved     time.Time // high-water mark for incremental refresh
	lastRefresh  time.Time

	groupTable map[string][]string
}

var _ interfaces.LookupService = (*Service)(nil)

// NewService creates a new lookup service
func NewService(narratives interfaces.NarrativeStore, catalog interfaces.CatalogStore, config *common.LookupConfig, logger arbor.ILogger) *Service {
	return &Service{
		narratives:      narratives,
		catalog:         catalog,
		logger:          logger,
		lockTimeout:     config.LockTimeout,
		refreshInterval: config.RefreshInterval,
		limiter:         rate.NewLimiter(rate.Every(config.RateLimit), 1),
		lock:            make(chan struct{}, 1),
		narrativeMap:    make(map[string]models.NarrativeInfo),
	}
}

// acquire takes the cache lock, failing with ErrLockTimeout after the
// configured bounded wait. Correctness of the shared cache takes priority
// over availability, so a timeout never degrades to an unlocked read.
func (s *Service) acquire() error {
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-time.After(s.lockTimeout):
		return fmt.Errorf("%w: waited %s", models.ErrLockTimeout, s.lockTimeout)
	}
}

func (s *Service) release() {
	<-s.lock
}

// NarrativeFor resolves a workspace id to its narrative display metadata,
// refreshing the cache first when stale. The second return reports whether a
// mapping exists; callers decide whether the mapping is usable.
func (s *Service) NarrativeFor(ctx context.Context, workspaceID string) (models.NarrativeInfo, bool, error) {
	if err := s.acquire(); err != nil {
		return models.NarrativeInfo{}, false, err
	}
	defer s.release()

	if err := s.refreshLocked(ctx); err != nil {
		return models.NarrativeInfo{}, false, err
	}

	info, ok := s.narrativeMap[workspaceID]
	return info, ok, nil
}

// RefreshNarratives forces an incremental refresh regardless of staleness.
func (s *Service) RefreshNarratives(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.lastRefresh = time.Time{}
	return s.refreshLocked(ctx)
}

// refreshLocked merges narrative records saved after the high-water mark into
// the map. Entries are never removed; deleted workspaces are skipped rather
// than evicted. Caller must hold the lock.
func (s *Service) refreshLocked(ctx context.Context) error {
	if !s.lastRefresh.IsZero() && time.Since(s.lastRefresh) < s.refreshInterval {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: refresh rate limit: %v", models.ErrSourceUnavailable, err)
	}

	entries, err := s.narratives.ListModifiedSince(ctx, s.maxSaved)
	if err != nil {
		return err
	}

	merged := 0
	for _, e := range entries {
		if e.LastSaved.After(s.maxSaved) {
			s.maxSaved = e.LastSaved
		}
		if e.Deleted {
			continue
		}
		s.narrativeMap[e.WorkspaceID] = models.NarrativeInfo{
			Name:    e.NiceName(),
			Version: e.Version(),
		}
		merged++
	}
	s.lastRefresh = time.Now()

	if merged > 0 {
		s.logger.Debug().Int("merged", merged).Int("total", len(s.narrativeMap)).Msg("Narrative map refreshed")
	}
	return nil
}

// ClientGroupTable returns the app -> client-group table, fetched from the
// catalog on first use and reused for the service lifetime.
func (s *Service) ClientGroupTable(ctx context.Context) (map[string][]string, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	if s.groupTable == nil {
		entries, err := s.catalog.ListClientGroups(ctx)
		if err != nil {
			return nil, err
		}
		table := make(map[string][]string, len(entries))
		for _, e := range entries {
			table[e.AppID] = e.ClientGroups
		}
		s.groupTable = table
		s.logger.Debug().Int("apps", len(table)).Msg("Client group table loaded")
	}

	return s.groupTable, nil
}

// Status reports the cache state for the status endpoint.
func (s *Service) Status() models.LookupStatus {
	if err := s.acquire(); err != nil {
		return models.LookupStatus{}
	}
	defer s.release()

	status := models.LookupStatus{
		Narratives:         len(s.narrativeMap),
		ClientGroupsLoaded: s.groupTable != nil,
	}
	if !s.lastRefresh.IsZero() {
		status.LastRefresh = s.lastRefresh.UnixMilli()
	}
	return status
}
