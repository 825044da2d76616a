package common

import (
	"errors"
	"testing"
	"time"

	"github.com/seqcentral/metior/internal/models"
)

func TestToEpochMillis(t *testing.T) {
	instant := time.Date(2017, 7, 14, 2, 15, 32, 849000000, time.UTC)

	tests := []struct {
		name    string
		input   interface{}
		want    int64
		wantErr bool
	}{
		{"time value", instant, 1500000932849, false},
		{"int64 passthrough", int64(1500000932849), 1500000932849, false},
		{"int passthrough", 1500000932849, 1500000932849, false},
		{"whole float", float64(1500000932849), 1500000932849, false},
		{"fractional float", 1500000932849.5, 0, true},
		{"string rejected", "1500000932849", 0, true},
		{"nil rejected", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEpochMillis(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				if !errors.Is(err, models.ErrTypeConversion) {
					t.Errorf("expected ErrTypeConversion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ToEpochMillis() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToTime(t *testing.T) {
	want := time.Date(2017, 7, 14, 2, 15, 32, 849000000, time.UTC)

	got, err := ToTime(int64(1500000932849))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("ToTime(int64) = %v, want %v", got, want)
	}

	got, err = ToTime("2017-07-14T02:15:32+0000")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want.Truncate(time.Second)) {
		t.Errorf("ToTime(string) = %v, want %v", got, want.Truncate(time.Second))
	}

	if _, err := ToTime("not a timestamp"); !errors.Is(err, models.ErrTypeConversion) {
		t.Errorf("expected ErrTypeConversion, got %v", err)
	}
	if _, err := ToTime(3.14); !errors.Is(err, models.ErrTypeConversion) {
		t.Errorf("expected ErrTypeConversion, got %v", err)
	}
}

func TestNormalizeTimeRangeAt(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		in        models.TimeRange
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"both given", models.TimeRange{Start: start, End: end}, start, end},
		{"only start", models.TimeRange{Start: start}, start, start.Add(48 * time.Hour)},
		{"only end", models.TimeRange{End: end}, end.Add(-48 * time.Hour), end},
		{"neither", models.TimeRange{}, now.Add(-48 * time.Hour), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTimeRangeAt(tt.in, now)
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("NormalizeTimeRangeAt() = (%v, %v), want (%v, %v)", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestValidateTimeRange(t *testing.T) {
	now := time.Now().UTC()

	if err := ValidateTimeRange(models.TimeRange{Start: now.Add(-time.Hour), End: now}); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateTimeRange(models.TimeRange{}); err != nil {
		t.Errorf("zero range rejected: %v", err)
	}

	err := ValidateTimeRange(models.TimeRange{Start: now, End: now.Add(-time.Hour)})
	if !errors.Is(err, models.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}
