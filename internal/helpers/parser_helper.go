package helpers

import (
	"strconv"
	"time"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// DateWindow translates a named date range into a [from, until) interval
// anchored at local midnight of now. Recognized ranges: "today",
// "this-week", "this-month".
func DateWindow(dateRange string, now time.Time) (from, until time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch dateRange {
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), true
	case "this-week":
		return midnight, midnight.AddDate(0, 0, 7), true
	case "this-month":
		return midnight, midnight.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}
