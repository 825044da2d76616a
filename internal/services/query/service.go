// -----------------------------------------------------------------------
// Query engine - mandatory restriction, filter/search/sort/pagination
// over resolved job states
// -----------------------------------------------------------------------

package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/seqcentral/metior/internal/common"
	"github.com/seqcentral/metior/internal/interfaces"
	"github.com/seqcentral/metior/internal/models"
)

// sortFields maps caller-facing sort field names to comparators. Anything
// else fails with ErrUnsupportedSortField.
var sortFields = map[string]func(a, b *models.ResolvedJobState) int{
	"job_id":            func(a, b *models.ResolvedJobState) int { return strings.Compare(a.JobID, b.JobID) },
	"user":              func(a, b *models.ResolvedJobState) int { return strings.Compare(a.User, b.User) },
	"creation_time":     func(a, b *models.ResolvedJobState) int { return compareInt64(a.CreationTime, b.CreationTime) },
	"exec_start_time":   func(a, b *models.ResolvedJobState) int { return compareOptInt64(a.ExecStartTime, b.ExecStartTime) },
	"modification_time": func(a, b *models.ResolvedJobState) int { return compareInt64(a.ModificationTime, b.ModificationTime) },
	"job_state":         func(a, b *models.ResolvedJobState) int { return strings.Compare(string(a.State), string(b.State)) },
}

// Service runs job-state queries: it fetches the caller-visible universe from
// the tracker source, resolves it, then applies filter, search, sort, and
// pagination in memory.
type Service struct {
	tracker  interfaces.TrackerStore
	resolver interfaces.Resolver
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a new query service
func NewService(tracker interfaces.TrackerStore, resolver interfaces.Resolver, logger arbor.ILogger) *Service {
	return &Service{
		tracker:  tracker,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// Query executes the full pipeline. TotalCount reflects the mandatory
// restriction and time range only; FoundCount additionally reflects filter
// and search, before pagination.
func (s *Service) Query(ctx context.Context, q *models.JobQuery) (*models.QueryResult, error) {
	if err := s.validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	if err := common.ValidateTimeRange(q.Range); err != nil {
		return nil, err
	}

	buckets, err := parseBuckets(q.Statuses)
	if err != nil {
		return nil, err
	}
	matchers, err := compileSearch(q.Search)
	if err != nil {
		return nil, err
	}
	// Sort specs are validated up front so an unsupported field fails the
	// request before any fetch.
	for _, spec := range q.Sort {
		if _, ok := sortFields[spec.Field]; !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedSortField, spec.Field)
		}
	}

	// Mandatory restriction: non-admins are silently confined to their own
	// records, whatever user filter they sent.
	restriction := []string(nil)
	if !q.Admin {
		restriction = []string{q.Caller}
	}

	window := common.NormalizeTimeRange(q.Range)
	entries, err := s.tracker.ListByUsers(ctx, restriction, window)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	totalCount := len(resolved)

	matched := make([]*models.ResolvedJobState, 0, len(resolved))
	for _, r := range resolved {
		if s.matches(r, q, buckets, matchers) {
			matched = append(matched, r)
		}
	}
	foundCount := len(matched)

	sortStates(matched, q.Sort)

	page := paginate(matched, q.Offset, q.Limit)

	s.logger.Debug().
		Str("caller", q.Caller).
		Bool("admin", q.Admin).
		Int("total", totalCount).
		Int("found", foundCount).
		Int("returned", len(page)).
		Msg("Query executed")

	return &models.QueryResult{
		JobStates:  page,
		FoundCount: foundCount,
		TotalCount: totalCount,
	}, nil
}

// matches applies the optional filters (AND across keys, OR within a key's
// value list) and the search terms (AND across terms).
func (s *Service) matches(r *models.ResolvedJobState, q *models.JobQuery, buckets []models.StatusBucket, matchers []searchMatcher) bool {
	if len(q.Users) > 0 && !containsString(q.Users, r.User) {
		return false
	}
	if len(q.JobIDs) > 0 && !containsJobID(q.JobIDs, r.JobID) {
		return false
	}
	if len(buckets) > 0 {
		hit := false
		for _, b := range buckets {
			if r.MatchesBucket(b) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, m := range matchers {
		if !m.matches(r) {
			return false
		}
	}
	return true
}

// searchMatcher is one compiled search term. It matches the user field, and
// the job id field when the term is itself a legal identifier.
type searchMatcher struct {
	term     string
	re       *regexp.Regexp // nil for exact terms
	tryJobID bool
}

func (m searchMatcher) matches(r *models.ResolvedJobState) bool {
	if m.re != nil {
		if m.re.MatchString(r.User) {
			return true
		}
		return m.tryJobID && m.re.MatchString(r.JobID)
	}
	if r.User == m.term {
		return true
	}
	return m.tryJobID && r.JobID == m.term
}

func compileSearch(terms []models.SearchTerm) ([]searchMatcher, error) {
	matchers := make([]searchMatcher, 0, len(terms))
	for _, t := range terms {
		m := searchMatcher{term: t.Term, tryJobID: models.IsValidJobID(t.Term)}
		if t.Type == models.SearchRegex {
			re, err := regexp.Compile(t.Term)
			if err != nil {
				return nil, fmt.Errorf("invalid search regex %q: %w", t.Term, err)
			}
			m.re = re
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func parseBuckets(names []string) ([]models.StatusBucket, error) {
	buckets := make([]models.StatusBucket, 0, len(names))
	for _, name := range names {
		b, ok := models.ParseStatusBucket(name)
		if !ok {
			return nil, fmt.Errorf("unknown status bucket %q", name)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// sortStates orders the slice by the sort keys in sequence, stable so equal
// records keep their fetch order. No keys means no reordering.
func sortStates(states []*models.ResolvedJobState, specs []models.SortSpec) {
	if len(specs) == 0 {
		return
	}
	sort.SliceStable(states, func(i, j int) bool {
		for _, spec := range specs {
			cmp := sortFields[spec.Field](states[i], states[j])
			if cmp == 0 {
				continue
			}
			if spec.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func paginate(states []*models.ResolvedJobState, offset, limit int) []*models.ResolvedJobState {
	if offset >= len(states) {
		return []*models.ResolvedJobState{}
	}
	end := len(states)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return states[offset:end]
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareOptInt64 sorts absent values before present ones.
func compareOptInt64(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareInt64(*a, *b)
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsJobID(list []models.JobID, v string) bool {
	for _, id := range list {
		if id.String() == v {
			return true
		}
	}
	return false
}
