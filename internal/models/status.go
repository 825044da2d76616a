package models

// NarrativeInfo is the lookup cache's view of one workspace: the narrative
// nice name and object version extracted from workspace metadata.
type NarrativeInfo struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// StoreCounts reports record counts per collection for the status endpoint.
type StoreCounts struct {
	TrackerJobs        int `json:"tracker_jobs"`
	ExecTasks          int `json:"exec_tasks"`
	ClientGroups       int `json:"client_groups"`
	Narratives         int `json:"narratives"`
	UserSummaries      int `json:"user_summaries"`
	ActivitySummaries  int `json:"activity_summaries"`
	NarrativeSummaries int `json:"narrative_summaries"`
}

// LookupStatus reports the shared cache's state.
type LookupStatus struct {
	Narratives         int   `json:"narratives"`
	LastRefresh        int64 `json:"last_refresh,omitempty"` // epoch ms, 0 = never
	ClientGroupsLoaded bool  `json:"client_groups_loaded"`
}

// ScheduledJobStatus reports one registered scheduler job.
type ScheduledJobStatus struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Running     bool   `json:"running"`
	LastRun     *int64 `json:"last_run,omitempty"` // epoch ms
	NextRun     *int64 `json:"next_run,omitempty"` // epoch ms
	LastError   string `json:"last_error,omitempty"`
}

// AppStatus is the aggregate status served to admin tooling.
type AppStatus struct {
	Version     string               `json:"version"`
	Environment string               `json:"environment"`
	Counts      StoreCounts          `json:"counts"`
	Lookup      LookupStatus         `json:"lookup"`
	Scheduler   []ScheduledJobStatus `json:"scheduler,omitempty"`
}
