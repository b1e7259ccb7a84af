package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays_SkipsWeekend(t *testing.T) {
	// 2024-01-01 is a Monday
	got := AddBusinessDays(date(2024, 1, 1), 5)
	if !got.Equal(date(2024, 1, 8)) {
		t.Errorf("expected 2024-01-08, got %s", Format(got))
	}
}

func TestAddBusinessDays_FromFriday(t *testing.T) {
	got := AddBusinessDays(date(2024, 1, 5), 1)
	if !got.Equal(date(2024, 1, 8)) {
		t.Errorf("expected Monday 2024-01-08, got %s", Format(got))
	}
}

func TestAddBusinessDays_NonPositive(t *testing.T) {
	start := date(2024, 1, 6) // Saturday stays Saturday
	if got := AddBusinessDays(start, 0); !got.Equal(start) {
		t.Errorf("n=0 should return start, got %s", Format(got))
	}
	if got := AddBusinessDays(start, -3); !got.Equal(start) {
		t.Errorf("n<0 should return start, got %s", Format(got))
	}
}

func TestAddBusinessDays_ZeroStart(t *testing.T) {
	got := AddBusinessDays(time.Time{}, 0)
	if got.IsZero() {
		t.Fatal("zero start should fall back to today")
	}
	if !got.Equal(Midnight(got)) || got.Location() != time.UTC {
		t.Errorf("fallback should be at midnight UTC, got %v", got)
	}
}

func TestAddBusinessDays_NormalisesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	got := AddBusinessDays(time.Date(2024, 1, 1, 0, 0, 0, 0, est), 5)
	if got != date(2024, 1, 8) {
		t.Errorf("expected 2024-01-08 UTC, got %v", got)
	}
}

func TestBusinessDayDiff_AcrossLocations(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, est)
	if got := BusinessDayDiff(start, date(2024, 1, 3)); got != 2 {
		t.Errorf("EST start to UTC end = %d, want 2", got)
	}
	if got := BusinessDayDiff(date(2024, 1, 1), time.Date(2024, 1, 3, 23, 0, 0, 0, est)); got != 2 {
		t.Errorf("UTC start to late EST end = %d, want 2", got)
	}
}

func TestBusinessDayDiff(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"one week", date(2024, 1, 1), date(2024, 1, 8), 5},
		{"end before start", date(2024, 1, 8), date(2024, 1, 1), 0},
		{"into weekend", date(2024, 1, 5), date(2024, 1, 7), 0},
		{"across weekend", date(2024, 1, 5), date(2024, 1, 9), 2},
		{"ignores hours", date(2024, 1, 1).Add(23 * time.Hour), date(2024, 1, 2).Add(time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDayDiff(tt.start, tt.end); got != tt.want {
				t.Errorf("BusinessDayDiff = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Every weekday of one week, n from 0 to 40
	for d := 1; d <= 5; d++ {
		start := date(2024, 1, d)
		for n := 0; n <= 40; n++ {
			end := AddBusinessDays(start, n)
			if got := BusinessDayDiff(start, end); got != n {
				t.Fatalf("start %s n=%d: round trip gave %d", Format(start), n, got)
			}
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(2024, 3, 15)) {
		t.Errorf("expected 2024-03-15, got %v", got)
	}

	got, err = ParseDate("2024-03-15T13:45:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(2024, 3, 15)) {
		t.Errorf("expected midnight 2024-03-15, got %v", got)
	}

	got, err = ParseDate("2024-03-15T22:00:00-05:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != date(2024, 3, 15) {
		t.Errorf("offset timestamp should keep its own calendar day in UTC, got %v", got)
	}

	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("expected error for garbage date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Error("expected error for empty date")
	}
}
