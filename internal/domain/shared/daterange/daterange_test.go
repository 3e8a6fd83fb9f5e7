package daterange

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustParse(t *testing.T, start, end string) DateRange {
	t.Helper()
	dr, err := Parse(start, end)
	if err != nil {
		t.Fatalf("parse %s..%s: %v", start, end, err)
	}
	return dr
}

func TestParseRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       error
	}{
		{"end before start", "2025-06-10", "2025-06-05", ErrInvalidRange},
		{"same day", "2025-06-10", "2025-06-10", ErrInvalidRange},
		{"bad start", "2025-13-01", "2025-06-10", ErrInvalidDate},
		{"bad end", "2025-06-01", "tomorrow", ErrInvalidDate},
		{"empty", "", "", ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.start, tc.end); err != tc.want {
				t.Fatalf("Parse = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOverlapsUsesClosedIntervals(t *testing.T) {
	base := mustParse(t, "2025-06-01", "2025-06-05")
	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical", "2025-06-01", "2025-06-05", true},
		{"inside", "2025-06-02", "2025-06-03", true},
		{"covering", "2025-05-20", "2025-06-20", true},
		{"touching end", "2025-06-05", "2025-06-08", true},
		{"touching start", "2025-05-28", "2025-06-01", true},
		{"after", "2025-06-06", "2025-06-08", false},
		{"before", "2025-05-20", "2025-05-31", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustParse(t, tc.start, tc.end)
			if got := base.Overlaps(other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps is not symmetric")
			}
		})
	}
}

func TestNewTruncatesToUTCDays(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	dr, err := New(time.Date(2025, 6, 1, 22, 30, 0, 0, loc), time.Date(2025, 6, 4, 1, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !dr.Start.Equal(day("2025-06-01")) || !dr.End.Equal(day("2025-06-04")) {
		t.Fatalf("unexpected range %s", dr)
	}
	if dr.Nights() != 3 {
		t.Fatalf("nights = %d, want 3", dr.Nights())
	}
}

func TestContainsDate(t *testing.T) {
	dr := mustParse(t, "2025-06-01", "2025-06-05")
	if !dr.ContainsDate(day("2025-06-05")) {
		t.Fatalf("end date should be contained")
	}
	if dr.ContainsDate(day("2025-06-06")) {
		t.Fatalf("day after end should not be contained")
	}
	if dr.String() != "2025-06-01..2025-06-05" {
		t.Fatalf("String = %q", dr.String())
	}
}
