package models

import "time"

// ExecutionTaskEntry is the execution-engine record holding the original
// invocation payload for a job. At most one task exists per tracker entry;
// absence is a valid, common case.
type ExecutionTaskEntry struct {
	JobID    JobID     `json:"job_id"` // tracker entry identifier
	JobInput *JobInput `json:"job_input,omitempty"`
	Created  time.Time `json:"created"`
}

// JobInput is the application-invocation payload. Method may be dot- or
// slash-delimited depending on which upstream wrote it; AppID and workspace
// references are frequently absent.
type JobInput struct {
	Method      string          `json:"method,omitempty"`
	AppID       string          `json:"app_id,omitempty"`
	WorkspaceID string          `json:"wsid,omitempty"`
	Params      []JobInputParam `json:"params,omitempty"`
}

// JobInputParam carries the workspace references embedded in the parameter
// list.
type JobInputParam struct {
	Workspace     string `json:"workspace,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	WorkspaceID   string `json:"wsid,omitempty"`
}

// WorkspaceNameFromParams returns the workspace display name from the
// parameter list, preferring the workspace field over workspace_name.
func (in *JobInput) WorkspaceNameFromParams() string {
	for _, p := range in.Params {
		if p.Workspace != "" {
			return p.Workspace
		}
	}
	for _, p := range in.Params {
		if p.WorkspaceName != "" {
			return p.WorkspaceName
		}
	}
	return ""
}

// WorkspaceIDFromParams returns the workspace id from the parameter list, or
// empty when none is present.
func (in *JobInput) WorkspaceIDFromParams() string {
	for _, p := range in.Params {
		if p.WorkspaceID != "" {
			return p.WorkspaceID
		}
	}
	return ""
}
