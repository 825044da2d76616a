// -----------------------------------------------------------------------
// Job state resolver - joins tracker entries with execution tasks and
// workspace/catalog metadata into canonical resolved records
// -----------------------------------------------------------------------

package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// Service resolves tracker entries into ResolvedJobState records. Resolution
// is a pure function of the fetched snapshots; a failure anywhere aborts the
// whole pass rather than returning a partial set.
type Service struct {
	execTasks interfaces.ExecTaskStore
	lookup    interfaces.LookupService
	logger    arbor.ILogger
}

var _ interfaces.Resolver = (*Service)(nil)

// NewService creates a new resolver service
func NewService(execTasks interfaces.ExecTaskStore, lookup interfaces.LookupService, logger arbor.ILogger) *Service {
	return &Service{
		execTasks: execTasks,
		lookup:    lookup,
		logger:    logger,
	}
}

// Resolve produces one ResolvedJobState per tracker entry. Execution tasks
// are fetched in one batch; a missing task is a valid case and degrades to
// omitted fields. A malformed tracker entry aborts the pass.
func (s *Service) Resolve(ctx context.Context, entries []*models.JobTrackerEntry) ([]*models.ResolvedJobState, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]models.JobID, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("tracker entry %q: %w", e.ID, err)
		}
		ids = append(ids, e.ID)
	}

	tasks, err := s.execTasks.ListByJobIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	taskByID := make(map[models.JobID]*models.ExecutionTaskEntry, len(tasks))
	for _, t := range tasks {
		taskByID[t.JobID] = t
	}

	groupTable, err := s.lookup.ClientGroupTable(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]*models.ResolvedJobState, 0, len(entries))
	for _, entry := range entries {
		state, err := s.resolveOne(ctx, entry, taskByID[entry.ID], groupTable)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, state)
	}

	s.logger.Debug().Int("entries", len(entries)).Int("tasks", len(tasks)).Msg("Resolved job states")
	return resolved, nil
}

func (s *Service) resolveOne(ctx context.Context, entry *models.JobTrackerEntry, task *models.ExecutionTaskEntry, groupTable map[string][]string) (*models.ResolvedJobState, error) {
	r := &models.ResolvedJobState{
		JobID:            entry.ID.String(),
		User:             entry.User,
		CreationTime:     entry.Created.UnixMilli(),
		ModificationTime: entry.Updated.UnixMilli(),
		Complete:         entry.Complete,
		Error:            entry.Error,
		Status:           entry.Status,
		AuthStrat:        entry.AuthStrat,
		AuthParam:        entry.AuthParam,
		Desc:             entry.Desc,
	}
	if entry.Started != nil {
		started := entry.Started.UnixMilli()
		r.ExecStartTime = &started
	}

	// Workspace-scoped jobs carry the workspace id in the auth parameter.
	if entry.AuthStrat == models.AuthStratWorkspace {
		r.WorkspaceID = entry.AuthParam
	}

	// Best-effort method extraction from the free-text description.
	if method := methodFromDesc(entry.Desc); method != "" {
		r.Method = method
	}

	r.State = models.DeriveJobState(entry)

	if task != nil && task.JobInput != nil {
		s.mergeJobInput(r, task.JobInput)
	}

	// app_id is present whenever method is, derived when the task omits it.
	if r.AppID == "" && r.Method != "" {
		r.AppID = strings.ReplaceAll(r.Method, ".", "/")
	}

	if r.WorkspaceID != "" {
		narrative, ok, err := s.lookup.NarrativeFor(ctx, r.WorkspaceID)
		if err != nil {
			return nil, err
		}
		// Attach only a usable match: named and versioned.
		if ok && narrative.Name != "" && narrative.Version != 0 {
			r.NarrativeName = narrative.Name
			r.NarrativeObjNo = narrative.Version
		}
	}

	r.ClientGroups = clientGroupsFor(r.AppID, groupTable)
	r.ComputeDurations()

	return r, nil
}

// mergeJobInput folds the execution task's invocation payload into the
// resolved record, deriving the cross-delimited app_id/method forms.
func (s *Service) mergeJobInput(r *models.ResolvedJobState, input *models.JobInput) {
	r.JobInput = input

	if r.AppID == "" {
		if input.AppID != "" {
			r.AppID = strings.ReplaceAll(input.AppID, ".", "/")
		} else if r.Method != "" {
			r.AppID = strings.ReplaceAll(r.Method, ".", "/")
		}
	}
	if r.Method == "" && input.Method != "" {
		r.Method = strings.ReplaceAll(input.Method, "/", ".")
	}
	if r.WorkspaceID == "" {
		if input.WorkspaceID != "" {
			r.WorkspaceID = input.WorkspaceID
		} else if wsid := input.WorkspaceIDFromParams(); wsid != "" {
			r.WorkspaceID = wsid
		}
	}
	if name := input.WorkspaceNameFromParams(); name != "" {
		r.WorkspaceName = name
	}
}

// methodFromDesc extracts a dotted method id from the last whitespace token
// of the description, if it contains a dot. Best effort; empty otherwise.
func methodFromDesc(desc string) string {
	fields := strings.Fields(desc)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if !strings.Contains(last, ".") {
		return ""
	}
	return last
}

// clientGroupsFor matches app_id case-insensitively against the catalog
// table, defaulting to njs when unmatched or when the table is empty.
func clientGroupsFor(appID string, table map[string][]string) []string {
	if appID != "" {
		want := strings.ToLower(appID)
		for id, groups := range table {
			if strings.ToLower(id) == want && len(groups) > 0 {
				return groups
			}
		}
	}
	return models.DefaultClientGroups
}
