// utils/dates.go
package utils

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	pastDays   = []humanize.RelTimeMagnitude{{D: math.MaxInt64, Format: "%d days %s", DivBy: humanize.Day}}
	futureDays = []humanize.RelTimeMagnitude{{D: math.MaxInt64, Format: "in %d days", DivBy: humanize.Day}}
)

// BeginningOfDay truncates t to midnight in its own location.
func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysBetween counts calendar days from start to end; negative when end is earlier.
// Rounding absorbs 23h/25h days around DST changes.
func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end.In(start.Location()))
	return int(math.Round(end.Sub(start).Hours() / 24))
}

// DaysLabel renders a whole-day offset as "N days ago" or "in N days".
func DaysLabel(days int) string {
	base := time.Unix(0, 0).UTC()
	then := base.Add(time.Duration(days) * humanize.Day)
	if days < 0 {
		return humanize.CustomRelTime(then, base, "ago", "", pastDays)
	}
	return humanize.CustomRelTime(then, base, "", "", futureDays)
}
