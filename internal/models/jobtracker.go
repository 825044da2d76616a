// -----------------------------------------------------------------------
// Job tracker source records - read-only view of the tracker store
// -----------------------------------------------------------------------

package models

import "time"

// Auth strategy tags carried on tracker entries. Workspace-scoped jobs carry
// the workspace id in AuthParam.
const (
	AuthStratDefault   = "DEFAULT"
	AuthStratWorkspace = "kbaseworkspace"
)

// JobTrackerEntry is the canonical job lifecycle record from the job-tracker
// source. Entries are created upstream when a job is submitted and mutated as
// it progresses; this service treats them as immutable once fetched.
type JobTrackerEntry struct {
	ID        JobID      `json:"id"`
	User      string     `json:"user"`
	Created   time.Time  `json:"created"`
	Started   *time.Time `json:"started,omitempty"`
	Updated   time.Time  `json:"updated"`
	Complete  bool       `json:"complete"`
	Error     bool       `json:"error"`
	Status    string     `json:"status"` // free text, never trusted directly for state
	AuthStrat string     `json:"authstrat"`
	AuthParam string     `json:"authparam,omitempty"`
	Desc      string     `json:"desc,omitempty"`
}

// Validate checks the fields the resolver treats as mandatory. A failure here
// is a programming error on the source side, not a data condition.
func (e *JobTrackerEntry) Validate() error {
	if e.ID == "" {
		return ErrMalformedRecord
	}
	if e.Created.IsZero() {
		return ErrMalformedRecord
	}
	return nil
}

// TrackerListOptions carries the source-level query the tracker store
// supports directly: user/time/id restriction plus sort and pagination.
type TrackerListOptions struct {
	Users    []string
	JobIDs   []JobID
	Start    time.Time
	End      time.Time
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}
