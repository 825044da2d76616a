// -----------------------------------------------------------------------
// Time normalization - epoch milliseconds vs absolute time conversions
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"math"
	"time"

	"github.com/seqcentral/metior/internal/models"
)

// PlatformTimeFormat is the fixed timestamp encoding used by the platform's
// source systems (ISO-8601 with numeric zone, no colon).
const PlatformTimeFormat = "2006-01-02T15:04:05Z0700"

// DefaultQueryWindow is the fallback span when a caller omits one or both
// ends of a time range.
const DefaultQueryWindow = 48 * time.Hour

// ToEpochMillis converts an absolute time or an epoch-millisecond integer to
// epoch milliseconds. Anything else fails with ErrTypeConversion.
func ToEpochMillis(value interface{}) (int64, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UnixMilli(), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v is not a whole millisecond value", models.ErrTypeConversion, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to epoch milliseconds", models.ErrTypeConversion, value)
	}
}

// ToTime converts an epoch-millisecond integer, an absolute time, or a
// platform-format timestamp string to an absolute UTC time. Anything else
// fails with ErrTypeConversion.
func ToTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case int:
		return time.UnixMilli(int64(v)).UTC(), nil
	case string:
		t, err := time.Parse(PlatformTimeFormat, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q does not match %s", models.ErrTypeConversion, v, PlatformTimeFormat)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: cannot convert %T to time", models.ErrTypeConversion, value)
	}
}

// NormalizeTimeRange fills in missing ends of a creation-time range:
// both given -> as-is; only start -> end = start + 48h; only end ->
// start = end - 48h; neither -> the most recent 48 hours ending now (UTC).
func NormalizeTimeRange(r models.TimeRange) models.TimeRange {
	return NormalizeTimeRangeAt(r, time.Now().UTC())
}

// NormalizeTimeRangeAt is NormalizeTimeRange with an explicit "now", so the
// defaulting rules are testable at a fixed instant.
func NormalizeTimeRangeAt(r models.TimeRange, now time.Time) models.TimeRange {
	switch {
	case !r.Start.IsZero() && !r.End.IsZero():
		return r
	case !r.Start.IsZero():
		return models.TimeRange{Start: r.Start, End: r.Start.Add(DefaultQueryWindow)}
	case !r.End.IsZero():
		return models.TimeRange{Start: r.End.Add(-DefaultQueryWindow), End: r.End}
	default:
		return models.TimeRange{Start: now.Add(-DefaultQueryWindow), End: now}
	}
}

// ValidateTimeRange rejects inverted ranges with ErrInvalidRange. Zero ends
// are fine; they are filled by NormalizeTimeRange.
func ValidateTimeRange(r models.TimeRange) error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s after end %s", models.ErrInvalidRange,
			r.Start.Format(PlatformTimeFormat), r.End.Format(PlatformTimeFormat))
	}
	return nil
}
