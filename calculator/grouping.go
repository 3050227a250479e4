package calculator

import (
	"sort"
	"time"
)

// MonthGroup collects the entries dated within one calendar month.
type MonthGroup[T any] struct {
	Month   string  `json:"month"` // "2024-03"
	Label   string  `json:"label"` // "March 2024"
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Entries []T     `json:"entries"`
}

// GroupByMonth buckets entries by the month of dateOf, newest month first. Entries keep
// their input order within a month. amountOf feeds the per-month Total.
func GroupByMonth[T any](entries []T, dateOf func(T) time.Time, amountOf func(T) float64) []MonthGroup[T] {
	index := make(map[string]int)
	var groups []MonthGroup[T]
	var starts []time.Time

	for _, e := range entries {
		d := dateOf(e)
		key := d.Format("2006-01")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup[T]{Month: key, Label: d.Format("January 2006")})
			starts = append(starts, time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC))
		}
		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].Count++
		if amountOf != nil {
			groups[i].Total += amountOf(e)
		}
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return starts[order[a]].After(starts[order[b]])
	})

	sorted := make([]MonthGroup[T], 0, len(groups))
	for _, i := range order {
		sorted = append(sorted, groups[i])
	}
	return sorted
}
