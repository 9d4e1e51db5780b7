package utils

import (
	"math"
	"time"
)

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Touching endpoints (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// CeilDays returns the number of billable days in [start, end), rounding any
// partial day up. A non-positive interval yields 0.
func CeilDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}
	return int64(math.Ceil(end.Sub(start).Hours() / 24))
}
