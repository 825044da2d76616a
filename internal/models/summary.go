// -----------------------------------------------------------------------
// Metrics store summary records - materialized by the write-back pipeline
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"time"
)

// UserSummary aggregates a user's job activity. Identity key: the username.
type UserSummary struct {
	User        string `json:"user"`
	FirstJob    int64  `json:"first_job"` // epoch ms of earliest observed job
	LastJob     int64  `json:"last_job"`  // epoch ms of latest observed job
	JobCount    int    `json:"job_count"`
	LastUpdated int64  `json:"last_updated"`
}

// Key returns the upsert identity key for the summary.
func (s *UserSummary) Key() string {
	return s.User
}

// ActivitySummary counts a user's jobs against one workspace on one UTC day.
// Identity key: user|workspace|day.
type ActivitySummary struct {
	User        string `json:"user"`
	WorkspaceID string `json:"wsid"`
	Day         string `json:"day"` // 2006-01-02, UTC
	JobCount    int    `json:"job_count"`
	LastUpdated int64  `json:"last_updated"`
}

// Key returns the upsert identity key for the summary.
func (s *ActivitySummary) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.User, s.WorkspaceID, s.Day)
}

// NarrativeSummary mirrors the narrative metadata into the metrics store.
// Identity key: the workspace id.
type NarrativeSummary struct {
	WorkspaceID string `json:"wsid"`
	Name        string `json:"name"`
	NiceName    string `json:"nice_name"`
	Version     int    `json:"version"`
	Deleted     bool   `json:"deleted"`
	LastSaved   int64  `json:"last_saved"`
	LastUpdated int64  `json:"last_updated"`
}

// Key returns the upsert identity key for the summary.
func (s *NarrativeSummary) Key() string {
	return s.WorkspaceID
}

// WritebackStats reports one pipeline run: how many summary records were
// newly inserted vs modified in place, per collection and in total.
type WritebackStats struct {
	RunID     string    `json:"run_id"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Inserted  int       `json:"inserted"`
	Modified  int       `json:"modified"`
	Users     int       `json:"users"`
	Activity  int       `json:"activity"`
	Narrative int       `json:"narratives"`
}
