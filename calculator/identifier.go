package calculator

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var estimateIDPattern = regexp.MustCompile(`^#\d{2}-\d{8}$`)

// GenerateEstimateID returns a display identifier of the form #RR-YYYYMMDD where RR is
// a random number in [0, 99]. Uniqueness is up to the caller.
func GenerateEstimateID(date time.Time) string {
	return FormatEstimateID(date, rand.IntN(100))
}

// FormatEstimateID builds the identifier for a given date and random part. Dates are
// clamped to years 0000-9999 so the date part is always eight digits.
func FormatEstimateID(date time.Time, n int) string {
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("#%02d-%s", n%100, clampYear(date).Format("20060102"))
}

func clampYear(date time.Time) time.Time {
	switch {
	case date.Year() < 0:
		return time.Date(0, time.January, 1, 0, 0, 0, 0, date.Location())
	case date.Year() > 9999:
		return time.Date(9999, time.December, 31, 0, 0, 0, 0, date.Location())
	}
	return date
}

// IsEstimateID reports whether s has the #RR-YYYYMMDD shape.
func IsEstimateID(s string) bool {
	return estimateIDPattern.MatchString(s)
}
