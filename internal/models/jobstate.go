// -----------------------------------------------------------------------
// Resolved job state - canonical output entity of the join engine
// -----------------------------------------------------------------------

package models

import (
	"strings"
)

// JobState is the closed set of derived lifecycle states. The raw tracker
// status string never drives control flow directly; DeriveJobState maps it
// into this set and unrecognized input lands on JobStateUnknown.
type JobState string

const (
	JobStateCompleted    JobState = "completed"
	JobStateSuspended    JobState = "suspended"
	JobStateInitializing JobState = "Initializing"
	JobStateQueued       JobState = "queued"
	JobStateCanceled     JobState = "canceled"
	JobStateInProgress   JobState = "in-progress"
	JobStateNotStarted   JobState = "not-started"
	JobStateUnknown      JobState = "unknown"
)

// DefaultClientGroups is used when an app has no catalog client-group match.
var DefaultClientGroups = []string{"njs"}

// hasCanceledPrefix matches the canceled/cancelled spellings the tracker
// emits, any case, prefix only ("canceled by user" counts).
func hasCanceledPrefix(status string) bool {
	s := strings.ToLower(status)
	return strings.HasPrefix(s, "canceled") || strings.HasPrefix(s, "cancelled")
}

// DeriveJobState derives the canonical state from the tracker entry's flags,
// status string, and timestamps. First match wins; the branches are
// exhaustive and mutually exclusive, so every entry lands on exactly one
// state.
func DeriveJobState(e *JobTrackerEntry) JobState {
	switch {
	case e.Error:
		return JobStateSuspended
	case e.Complete:
		return JobStateCompleted
	case e.Status == string(JobStateInitializing) || e.Status == string(JobStateQueued):
		return JobState(e.Status)
	case hasCanceledPrefix(e.Status):
		return JobStateCanceled
	case e.Started != nil:
		return JobStateInProgress
	case e.Created.Equal(e.Updated):
		return JobStateNotStarted
	case e.Created.Before(e.Updated):
		return JobStateQueued
	default:
		return JobStateUnknown
	}
}

// ResolvedJobState is the canonical record produced by joining a tracker
// entry with its execution task and workspace/catalog metadata. Timestamps
// crossing this boundary are epoch milliseconds UTC. Conditionally-present
// quantities are pointers or omitted-when-empty fields, never dynamic keys.
type ResolvedJobState struct {
	JobID            string    `json:"job_id"`
	User             string    `json:"user"`
	CreationTime     int64     `json:"creation_time"`
	ExecStartTime    *int64    `json:"exec_start_time,omitempty"`
	ModificationTime int64     `json:"modification_time"`
	FinishTime       *int64    `json:"finish_time,omitempty"`
	State            JobState  `json:"job_state"`
	Complete         bool      `json:"complete"`
	Error            bool      `json:"error"`
	Status           string    `json:"status,omitempty"`
	AuthStrat        string    `json:"authstrat,omitempty"`
	AuthParam        string    `json:"authparam,omitempty"`
	Desc             string    `json:"desc,omitempty"`
	WorkspaceID      string    `json:"wsid,omitempty"`
	AppID            string    `json:"app_id,omitempty"` // slash-delimited module/method
	Method           string    `json:"method,omitempty"` // dot-delimited module.method
	JobInput         *JobInput `json:"job_input,omitempty"`
	WorkspaceName    string    `json:"workspace_name,omitempty"`
	NarrativeName    string    `json:"narrative_name,omitempty"`
	NarrativeObjNo   int       `json:"narrative_objno,omitempty"`
	ClientGroups     []string  `json:"client_groups"`

	// Mutually exclusive duration fields, populated strictly from State.
	RunTime     *int64 `json:"run_time,omitempty"`
	RunningTime *int64 `json:"running_time,omitempty"`
	TimeInQueue *int64 `json:"time_in_queue,omitempty"`
}

// ComputeDurations populates FinishTime and the state-appropriate duration
// field. A violated time-order invariant omits the field rather than failing.
func (r *ResolvedJobState) ComputeDurations() {
	switch r.State {
	case JobStateCompleted, JobStateSuspended:
		finish := r.ModificationTime
		r.FinishTime = &finish
		if r.ExecStartTime != nil && finish >= *r.ExecStartTime {
			d := finish - *r.ExecStartTime
			r.RunTime = &d
		}
	case JobStateInProgress:
		if r.ExecStartTime != nil && r.ModificationTime >= *r.ExecStartTime {
			d := r.ModificationTime - *r.ExecStartTime
			r.RunningTime = &d
		}
	case JobStateQueued:
		if r.ModificationTime >= r.CreationTime {
			d := r.ModificationTime - r.CreationTime
			r.TimeInQueue = &d
		}
	}
}

// StatusBucket is the logical status grouping exposed to filter callers.
// Buckets partition the record space by construction of DeriveJobState.
type StatusBucket string

const (
	BucketQueue     StatusBucket = "queue"
	BucketRun       StatusBucket = "run"
	BucketComplete  StatusBucket = "complete"
	BucketError     StatusBucket = "error"
	BucketTerminate StatusBucket = "terminate"
)

// ParseStatusBucket maps caller-supplied bucket names to the closed set.
// "cancel" is accepted as an alias for "terminate".
func ParseStatusBucket(s string) (StatusBucket, bool) {
	switch strings.ToLower(s) {
	case "queue":
		return BucketQueue, true
	case "run":
		return BucketRun, true
	case "complete", "completed":
		return BucketComplete, true
	case "error":
		return BucketError, true
	case "terminate", "cancel", "canceled", "cancelled":
		return BucketTerminate, true
	default:
		return "", false
	}
}

// MatchesBucket evaluates the bucket predicate against the resolved record.
// Note the deliberate breadth of the error bucket: a complete job whose
// status is neither "done" nor a canceled-prefix counts as an error.
func (r *ResolvedJobState) MatchesBucket(b StatusBucket) bool {
	switch b {
	case BucketQueue:
		return !r.Complete && r.CreationTime != 0 && r.ExecStartTime == nil
	case BucketRun:
		return !r.Complete && r.ExecStartTime != nil
	case BucketComplete:
		return r.Complete && r.Status == "done"
	case BucketError:
		return r.Complete && (r.Error ||
			r.Status == "Unknown error" ||
			(r.Status != "done" && !hasCanceledPrefix(r.Status)))
	case BucketTerminate:
		return r.Complete && hasCanceledPrefix(r.Status)
	default:
		return false
	}
}
