package helpers

import (
	"testing"
	"time"
)

func TestDateWindow(t *testing.T) {
	now := time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		dateRange string
		until     time.Time
	}{
		{"today", midnight.AddDate(0, 0, 1)},
		{"this-week", midnight.AddDate(0, 0, 7)},
		{"this-month", midnight.AddDate(0, 1, 0)},
	}

	for _, tc := range cases {
		from, until, ok := DateWindow(tc.dateRange, now)
		if !ok {
			t.Fatalf("DateWindow(%q) should be recognized", tc.dateRange)
		}
		if !from.Equal(midnight) {
			t.Errorf("DateWindow(%q) from = %v, want %v", tc.dateRange, from, midnight)
		}
		if !until.Equal(tc.until) {
			t.Errorf("DateWindow(%q) until = %v, want %v", tc.dateRange, until, tc.until)
		}
	}

	if _, _, ok := DateWindow("", now); ok {
		t.Errorf("Empty range must not produce a window")
	}
	if _, _, ok := DateWindow("next-year", now); ok {
		t.Errorf("Unknown range must not produce a window")
	}
}
