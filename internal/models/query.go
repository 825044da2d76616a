package models

import "time"

// SearchType selects how a search term is matched.
type SearchType string

const (
	SearchExact SearchType = "exact"
	SearchRegex SearchType = "regex"
)

// SearchTerm is one entry in the search list. Terms compose with AND across
// the list; within a term the applicable fields (user, and job id when the
// term parses as a legal identifier) compose with OR.
type SearchTerm struct {
	Type SearchType `json:"type" validate:"oneof=exact regex"`
	Term string     `json:"term" validate:"required"`
}

// SortSpec is one sort key. Keys apply in order; Descending reverses the
// default ascending order for that key.
type SortSpec struct {
	Field      string `json:"field" validate:"required"`
	Descending bool   `json:"descending"`
}

// TimeRange bounds creation_time inclusively. Either side may be zero; the
// query engine fills defaults per the 48-hour windowing rules.
type TimeRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// JobQuery is the full query request over the resolved job-state collection.
// The caller identity drives the mandatory restriction: non-admin callers
// only ever see their own records, regardless of filters.
type JobQuery struct {
	Caller string `json:"caller" validate:"required"`
	Admin  bool   `json:"admin"`

	Users    []string     `json:"user_id,omitempty"`
	JobIDs   []JobID      `json:"job_id,omitempty"`
	Statuses []string     `json:"status,omitempty"`
	Search   []SearchTerm `json:"search,omitempty"`
	Range    TimeRange    `json:"range"`
	Sort     []SortSpec   `json:"sort,omitempty"`
	Offset   int          `json:"offset" validate:"gte=0"`
	Limit    int          `json:"limit" validate:"gte=0"` // 0 = unbounded
}

// QueryResult carries the paginated slice plus both counts. FoundCount is the
// match count before pagination; TotalCount is the size of the caller-visible
// universe ignoring optional filter/search.
type QueryResult struct {
	JobStates  []*ResolvedJobState `json:"job_states"`
	FoundCount int                 `json:"found_count"`
	TotalCount int                 `json:"total_count"`
}
